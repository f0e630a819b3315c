package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/config"
	"github.com/unklstewy/skysentry/pkg/coordinates"
	"github.com/unklstewy/skysentry/pkg/plot"
)

// main renders a live ASCII radar view of the local receiver feed:
// a fixed-size character grid centered on the antenna plus a table of
// the nearest aircraft, redrawn on a fixed refresh interval.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	once := flag.Bool("once", false, "Render a single frame and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	feed := adsb.NewSkyAwareClient(cfg.Receiver.FeedURL())
	defer feed.Close()

	antenna := cfg.Antenna.Position()
	opts := plot.Options{
		Width:          cfg.Plot.Width,
		Height:         cfg.Plot.Height,
		LatSpan:        cfg.Plot.LatSpan,
		LonSpan:        cfg.Plot.LonSpan,
		AltThresholdFt: cfg.Plot.AltThresholdFt,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Duration(cfg.Plot.RefreshSeconds) * time.Second)
	defer ticker.Stop()

	for {
		drawFrame(feed, antenna, opts, cfg.Plot.TableLimit)
		if *once {
			return
		}
		select {
		case <-ctx.Done():
			fmt.Println("\nExiting.")
			return
		case <-ticker.C:
		}
	}
}

func drawFrame(feed adsb.FeedSource, antenna coordinates.Geographic, opts plot.Options, tableLimit int) {
	aircraft, err := feed.Fetch()

	// ANSI full reset clears the terminal between frames.
	fmt.Print("\033c")
	fmt.Printf("SkySentry ASCII Scope - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("Antenna: %.4f, %.4f | Span: %.1f deg lat x %.1f deg lon\n\n",
		antenna.Latitude, antenna.Longitude, opts.LatSpan, opts.LonSpan)

	if err != nil {
		fmt.Printf("Feed unavailable: %v\n", err)
		return
	}

	grid := plot.Render(aircraft, antenna, opts)
	fmt.Println(grid.String())
	fmt.Println(plot.Legend())
	fmt.Printf("Aircraft: %d total, %d plotted, %d outside view\n\n",
		len(aircraft), grid.Plotted, grid.Clipped)

	rows := plot.NearestTable(aircraft, antenna, tableLimit)
	fmt.Println(plot.FormatTable(rows))
}
