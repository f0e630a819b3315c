package adsb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SkyAwareClient implements the FeedSource interface for a local
// PiAware/SkyAware receiver. The receiver serves its current aircraft list
// as JSON at /skyaware/data/aircraft.json, regenerated roughly once per
// second by dump1090-fa.
type SkyAwareClient struct {
	// baseURL is the feed URL (e.g., "http://192.168.1.20/skyaware/data/aircraft.json")
	baseURL string

	// httpClient is the HTTP client used for feed requests
	httpClient *http.Client
}

// NewSkyAwareClient creates a new SkyAware feed client.
// feedURL should point at the receiver's aircraft.json endpoint.
func NewSkyAwareClient(feedURL string) *SkyAwareClient {
	return &SkyAwareClient{
		baseURL: feedURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FeedURL builds the standard SkyAware aircraft.json URL for a receiver.
func FeedURL(host string, port int) string {
	return fmt.Sprintf("http://%s:%d/skyaware/data/aircraft.json", host, port)
}

// Fetch returns the receiver's current aircraft list.
// Aircraft without a hex code are skipped; everything else is kept, even
// without a position fix, so callers can still classify by callsign.
func (c *SkyAwareClient) Fetch() ([]Aircraft, error) {
	resp, err := c.httpClient.Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var feed skyAwareFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to parse aircraft feed: %w", err)
	}

	// The feed timestamp anchors each aircraft's "seen" age. Fall back to
	// wall clock if the receiver did not report one.
	now := time.Now().UTC()
	if feed.Now > 0 {
		now = time.Unix(0, int64(feed.Now*float64(time.Second))).UTC()
	}

	aircraft := make([]Aircraft, 0, len(feed.Aircraft))
	for _, ac := range feed.Aircraft {
		if ac.Hex == "" {
			continue
		}
		aircraft = append(aircraft, convertSkyAwareAircraft(ac, now))
	}

	return aircraft, nil
}

// ReceiverPosition returns the receiver's own coordinates if the feed
// reports them. Returns nil, nil when the receiver location is not set.
func (c *SkyAwareClient) ReceiverPosition() (*float64, *float64, error) {
	resp, err := c.httpClient.Get(c.baseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch aircraft feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var feed skyAwareFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse aircraft feed: %w", err)
	}

	return feed.Lat, feed.Lon, nil
}

// Close cleanly shuts down the client.
// For SkyAware, this is a no-op as there are no persistent connections.
func (c *SkyAwareClient) Close() error {
	return nil
}

// skyAwareFeed represents the aircraft.json document from dump1090-fa.
type skyAwareFeed struct {
	// Now is the feed generation time as a Unix timestamp
	Now float64 `json:"now"`

	// Messages is the total Mode S message count since startup
	Messages int64 `json:"messages"`

	// Lat/Lon are the receiver's own coordinates, if configured
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	// Aircraft is the list of currently tracked aircraft
	Aircraft []skyAwareAircraft `json:"aircraft"`
}

// skyAwareAircraft represents a single aircraft record in aircraft.json.
// Optional fields are pointers so "absent" and "zero" stay distinguishable.
type skyAwareAircraft struct {
	// Hex is the ICAO Mode S hex code (e.g., "a12345")
	Hex string `json:"hex"`

	// Flight is the callsign, padded to 8 characters with spaces
	Flight *string `json:"flight"`

	// Squawk is the Mode A code as 4 octal digits
	Squawk *string `json:"squawk"`

	// Lat is latitude in decimal degrees
	Lat *float64 `json:"lat"`

	// Lon is longitude in decimal degrees
	Lon *float64 `json:"lon"`

	// AltBaro is barometric altitude in feet.
	// Note: Can be the string "ground" or a number.
	AltBaro interface{} `json:"alt_baro"`

	// Gs is ground speed in knots
	Gs *float64 `json:"gs"`

	// Track is ground track in degrees (0-360)
	Track *float64 `json:"track"`

	// Seen is seconds since the last message from this aircraft
	Seen *float64 `json:"seen"`
}

// convertSkyAwareAircraft converts a feed record to our Aircraft type.
func convertSkyAwareAircraft(ac skyAwareAircraft, now time.Time) Aircraft {
	aircraft := Aircraft{
		Hex:       strings.ToLower(ac.Hex),
		Latitude:  ac.Lat,
		Longitude: ac.Lon,
	}

	if ac.Flight != nil {
		aircraft.Callsign = strings.TrimSpace(*ac.Flight)
	}
	if ac.Squawk != nil {
		aircraft.Squawk = *ac.Squawk
	}
	if alt := parseAltitude(ac.AltBaro); alt != nil {
		aircraft.Altitude = alt
	}
	aircraft.GroundSpeed = ac.Gs
	aircraft.Track = ac.Track

	if ac.Seen != nil {
		aircraft.SeenAt = now.Add(-time.Duration(*ac.Seen * float64(time.Second)))
	} else {
		aircraft.SeenAt = now
	}

	return aircraft
}

// parseAltitude safely extracts altitude from interface{} which can be
// float64 or string. Returns nil if the value is invalid; "ground" maps to 0.
func parseAltitude(val interface{}) *float64 {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case float64:
		return &v
	case string:
		if v == "ground" {
			zero := 0.0
			return &zero
		}
		return nil
	default:
		return nil
	}
}
