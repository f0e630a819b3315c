package main

import (
	"flag"
	"log"
	"time"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/config"
	"github.com/unklstewy/skysentry/pkg/coordinates"
)

// main is a connectivity test for the local receiver feed. It fetches one
// snapshot, prints receiver details, and lists what the antenna currently
// hears with range and bearing from the configured antenna position.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	flag.Parse()

	log.Println("SkySentry Feed Test")
	log.Println("=====================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	antenna := cfg.Antenna.Position()
	log.Printf("Feed URL: %s", cfg.Receiver.FeedURL())
	log.Printf("Antenna:  %.4f°, %.4f°", antenna.Latitude, antenna.Longitude)

	client := adsb.NewSkyAwareClient(cfg.Receiver.FeedURL())
	defer client.Close()

	if lat, lon, err := client.ReceiverPosition(); err != nil {
		log.Printf("Receiver position unavailable: %v", err)
	} else if lat != nil && lon != nil {
		log.Printf("Receiver reports position %.4f°, %.4f°", *lat, *lon)
	} else {
		log.Printf("Receiver does not report a position")
	}

	aircraft, err := client.Fetch()
	if err != nil {
		log.Fatalf("Failed to fetch aircraft: %v", err)
	}

	log.Printf("Found %d aircraft", len(aircraft))
	log.Println("=====================================")

	positioned := 0
	for i, ac := range aircraft {
		log.Printf("\nAircraft #%d:", i+1)
		log.Printf("  ICAO:     %s", ac.Hex)
		if ac.Callsign != "" {
			log.Printf("  Callsign: %s", ac.Callsign)
		}
		if ac.Squawk != "" {
			log.Printf("  Squawk:   %s", ac.Squawk)
		}
		if ac.HasPosition() {
			positioned++
			pos := coordinates.Geographic{Latitude: *ac.Latitude, Longitude: *ac.Longitude}
			log.Printf("  Position: %.4f°, %.4f°", pos.Latitude, pos.Longitude)
			log.Printf("  Range:    %.1f nm", coordinates.DistanceNauticalMiles(antenna, pos))
			log.Printf("  Bearing:  %.0f°", coordinates.Bearing(antenna, pos))
		} else {
			log.Printf("  Position: no fix")
		}
		if ac.Altitude != nil {
			log.Printf("  Altitude: %.0f ft", *ac.Altitude)
		}
		if ac.GroundSpeed != nil {
			log.Printf("  Speed:    %.0f knots", *ac.GroundSpeed)
		}
		if ac.Track != nil {
			log.Printf("  Track:    %.0f°", *ac.Track)
		}
		log.Printf("  Last Seen: %s (%.1fs ago)",
			ac.SeenAt.Format("15:04:05"),
			time.Since(ac.SeenAt).Seconds())

		if i >= 9 {
			log.Printf("\n... and %d more aircraft", len(aircraft)-10)
			break
		}
	}

	log.Println("\n=====================================")
	log.Printf("Test complete: %d aircraft, %d with position", len(aircraft), positioned)
}
