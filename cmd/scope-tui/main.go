package main

import (
	"flag"
	"log"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/config"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
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

	app := NewApp(cfg, feed)
	if err := app.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
