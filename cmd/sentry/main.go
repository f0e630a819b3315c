package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/classify"
	"github.com/unklstewy/skysentry/pkg/config"
	"github.com/unklstewy/skysentry/pkg/credits"
	"github.com/unklstewy/skysentry/pkg/monitor"
	"github.com/unklstewy/skysentry/pkg/opensky"
	"github.com/unklstewy/skysentry/pkg/report"
)

// main runs the console tracker: poll the local receiver, classify each
// aircraft as military and/or foreign, and print color-coded alerts.
// Registration data comes from OpenSky, gated by the daily credit budget.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	flag.Parse()

	log.Println("===========================================")
	log.Println("  skysentry - foreign/military monitor")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Configuration loaded from: %s", *configPath)
	log.Printf("Receiver feed: %s", cfg.Receiver.FeedURL())
	log.Printf("Home country: %s", cfg.Watch.Policy.HomeCountry)
	log.Printf("Watch rules: %d callsign patterns, %d ICAO prefixes, %d squawks",
		len(cfg.Watch.Policy.CallsignPatterns),
		len(cfg.Watch.Policy.ICAOPrefixes),
		len(cfg.Watch.Policy.Squawks))

	bbox := cfg.OpenSky.BoundingBox
	cost := cfg.OpenSky.CreditCostPerCall
	if cost <= 0 {
		cost = credits.CostForArea(bbox.AreaSquareDegrees())
	}
	log.Printf("OpenSky region: %.2f sq deg (%d credit(s)/call, %d/day, every %ds)",
		bbox.AreaSquareDegrees(), cost,
		cfg.OpenSky.DailyCreditLimit, cfg.OpenSky.MinIntervalSeconds)

	classifier, err := classify.NewClassifier(cfg.Watch.Policy)
	if err != nil {
		log.Fatalf("Invalid watch policy: %v", err)
	}

	feed := adsb.NewSkyAwareClient(cfg.Receiver.FeedURL())
	defer feed.Close()

	lookup := opensky.NewClient(opensky.Config{
		BaseURL:     cfg.OpenSky.BaseURL,
		MinInterval: time.Duration(cfg.OpenSky.MinIntervalSeconds) * time.Second,
	})
	defer lookup.Close()

	m := monitor.New(monitor.Options{
		Feed:        feed,
		Lookup:      lookup,
		Budget:      credits.NewBudget(cfg.OpenSky.DailyCreditLimit, time.Duration(cfg.OpenSky.MinIntervalSeconds)*time.Second),
		Classifier:  classifier,
		Reporter:    report.NewReporter(os.Stdout),
		BBox:        bbox,
		CostPerCall: cfg.OpenSky.CreditCostPerCall,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.Watch.PollIntervalSeconds) * time.Second
	log.Printf("Polling every %v. Press Ctrl+C to exit.", interval)

	m.Run(ctx, interval)
	log.Println("Monitoring stopped")
}
