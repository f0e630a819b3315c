package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/unklstewy/skysentry/pkg/classify"
	"github.com/unklstewy/skysentry/pkg/coordinates"
)

// Config represents the complete application configuration.
type Config struct {
	Receiver Receiver `json:"receiver"`
	OpenSky  OpenSky  `json:"opensky"`
	Watch    Watch    `json:"watch"`
	Plot     Plot     `json:"plot"`
	Antenna  Antenna  `json:"antenna"`
}

// Receiver contains the local PiAware/SkyAware feed settings.
type Receiver struct {
	// Host is the receiver's IP or hostname
	Host string `json:"host"`

	// Port is the receiver's HTTP port (default: 80)
	Port int `json:"port"`

	// URL overrides the derived feed URL entirely, for nonstandard
	// receiver layouts. When set, Host/Port are ignored.
	URL string `json:"url,omitempty"`
}

// FeedURL returns the effective aircraft.json URL.
func (r Receiver) FeedURL() string {
	if r.URL != "" {
		return r.URL
	}
	return fmt.Sprintf("http://%s:%d/skyaware/data/aircraft.json", r.Host, r.Port)
}

// OpenSky contains registration API and credit budget settings.
type OpenSky struct {
	// BaseURL is the API base URL (default: "https://opensky-network.org/api")
	BaseURL string `json:"base_url"`

	// BoundingBox scopes the state-vector query. Keep it small: the
	// credit cost per call grows with area (see the credits package).
	BoundingBox coordinates.BoundingBox `json:"bounding_box"`

	// MinIntervalSeconds is the minimum spacing between API calls
	MinIntervalSeconds int `json:"min_interval_seconds"`

	// DailyCreditLimit is the account's credit allowance per calendar day
	DailyCreditLimit int `json:"daily_credit_limit"`

	// CreditCostPerCall is the credit cost of one query.
	// 0 = derive from the bounding-box area.
	CreditCostPerCall int `json:"credit_cost_per_call"`
}

// Watch contains the classification policy and console tracker settings.
type Watch struct {
	// Policy holds the military/foreign matching rules
	Policy classify.Policy `json:"policy"`

	// PollIntervalSeconds is the delay between feed polls
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

// Plot contains ASCII plot geometry and display settings.
type Plot struct {
	// Width and Height are the plot dimensions in characters
	Width  int `json:"width"`
	Height int `json:"height"`

	// LatSpan/LonSpan are the degree spans mapped onto the grid
	LatSpan float64 `json:"lat_span"`
	LonSpan float64 `json:"lon_span"`

	// AltThresholdFt splits high from low traffic markers
	AltThresholdFt float64 `json:"alt_threshold_ft"`

	// TableLimit caps the nearest-aircraft table rows
	TableLimit int `json:"table_limit"`

	// RefreshSeconds is the delay between plot refreshes
	RefreshSeconds int `json:"refresh_seconds"`
}

// Antenna is the receiver antenna's location, the plot center.
type Antenna struct {
	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude"`
}

// Position returns the antenna location as a Geographic point.
func (a Antenna) Position() coordinates.Geographic {
	return coordinates.Geographic{Latitude: a.Latitude, Longitude: a.Longitude}
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
// A .env file in the working directory and process environment variables
// override file values; see applyEnvironmentOverrides.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env file is fine.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
// The military lists are illustrative, not authoritative; operators should
// tune them for their airspace.
func DefaultConfig() *Config {
	return &Config{
		Receiver: Receiver{
			Host: "127.0.0.1",
			Port: 80,
		},
		OpenSky: OpenSky{
			BaseURL: "https://opensky-network.org/api",
			BoundingBox: coordinates.BoundingBox{
				LatMin: 40.2628, LatMax: 41.1628,
				LonMin: -74.6, LonMax: -73.412,
			},
			MinIntervalSeconds: 300,
			DailyCreditLimit:   400,
			CreditCostPerCall:  0, // derive from area
		},
		Watch: Watch{
			Policy: classify.Policy{
				CallsignPatterns: []string{
					`^RCH\d`,   // Air Mobility Command (Reach)
					`^DOOM\d`,  // Various combat aircraft
					`^RAGE\d`,  // Combat aircraft
					`^KING\d`,  // Aerial refueling tankers
					`^NAVY\w`,  // Navy flights
					`^AF\d`,    // Air Force
					`^USAF\d`,  // US Air Force
					`^MARINE`,  // Marine Corps
					`^ZEUS\d`,  // Military operations
					`^NINJA\d`, // Military operations
					`^TREK\d`,  // Transport flights
					`^SNTRY`,   // AWACS
					`^SLAM\d`,  // Military operations
					`^WOLF\d`,  // Combat aircraft
					`^BISON\d`, // Military transport
					`^WEASEL`,  // Electronic warfare aircraft
					`^EAGLE\d`, // Military operations
					`^FALCON`,  // Combat aircraft
					`^VIPER`,   // Combat aircraft
					`^COBRA`,   // Attack helicopters
				},
				ICAOPrefixes: []string{
					"ADF", // US Air Force
					"ADC", // US Army
					"AE",  // US Navy and Marine Corps
				},
				Squawks: []string{
					"7400", "7401", "7402", // lost-link UAS
					"7500", "7600", "7700", // hijack, radio failure, emergency
					"7777", // military interceptor
				},
				HomeCountry: "United States",
			},
			PollIntervalSeconds: 30,
		},
		Plot: Plot{
			Width:          80,
			Height:         20,
			LatSpan:        2.0,
			LonSpan:        2.0,
			AltThresholdFt: 20000,
			TableLimit:     10,
			RefreshSeconds: 5,
		},
		Antenna: Antenna{
			Latitude:  40.7128,
			Longitude: -74.0060,
		},
	}
}

// Validate checks required settings. An invalid configuration is the only
// fatal condition in the system and must be surfaced before any loop starts.
func (c *Config) Validate() error {
	if c.Receiver.URL == "" && c.Receiver.Host == "" {
		return fmt.Errorf("receiver: host or url is required")
	}
	if c.Receiver.URL == "" && (c.Receiver.Port <= 0 || c.Receiver.Port > 65535) {
		return fmt.Errorf("receiver: port %d out of range", c.Receiver.Port)
	}
	if !c.OpenSky.BoundingBox.Valid() {
		return fmt.Errorf("opensky: invalid bounding box %+v", c.OpenSky.BoundingBox)
	}
	if c.OpenSky.MinIntervalSeconds < 0 {
		return fmt.Errorf("opensky: min_interval_seconds must not be negative")
	}
	if c.OpenSky.DailyCreditLimit <= 0 {
		return fmt.Errorf("opensky: daily_credit_limit must be positive")
	}
	if c.Watch.Policy.HomeCountry == "" {
		return fmt.Errorf("watch: home_country is required")
	}
	if c.Watch.PollIntervalSeconds <= 0 {
		return fmt.Errorf("watch: poll_interval_seconds must be positive")
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("plot: dimensions must be positive")
	}
	if c.Plot.LatSpan <= 0 || c.Plot.LonSpan <= 0 {
		return fmt.Errorf("plot: lat_span and lon_span must be positive")
	}
	if c.Plot.TableLimit <= 0 {
		return fmt.Errorf("plot: table_limit must be positive")
	}
	if c.Plot.RefreshSeconds <= 0 {
		return fmt.Errorf("plot: refresh_seconds must be positive")
	}
	if c.Antenna.Latitude < -90 || c.Antenna.Latitude > 90 {
		return fmt.Errorf("antenna: latitude %f out of range", c.Antenna.Latitude)
	}
	if c.Antenna.Longitude < -180 || c.Antenna.Longitude > 180 {
		return fmt.Errorf("antenna: longitude %f out of range", c.Antenna.Longitude)
	}

	// Surface broken regex patterns at startup rather than first use.
	if _, err := classify.NewClassifier(c.Watch.Policy); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides.
// This keeps host-specific values out of shared config files.
func (c *Config) applyEnvironmentOverrides() {
	if host := os.Getenv("SKYSENTRY_RECEIVER_HOST"); host != "" {
		c.Receiver.Host = host
	}
	if port := os.Getenv("SKYSENTRY_RECEIVER_PORT"); port != "" {
		if val, err := strconv.Atoi(port); err == nil {
			c.Receiver.Port = val
		}
	}
	if url := os.Getenv("SKYSENTRY_FEED_URL"); url != "" {
		c.Receiver.URL = url
	}
	if url := os.Getenv("SKYSENTRY_OPENSKY_URL"); url != "" {
		c.OpenSky.BaseURL = url
	}
	if country := os.Getenv("SKYSENTRY_HOME_COUNTRY"); country != "" {
		c.Watch.Policy.HomeCountry = country
	}
	if lat := os.Getenv("SKYSENTRY_ANTENNA_LAT"); lat != "" {
		if val, err := strconv.ParseFloat(lat, 64); err == nil {
			c.Antenna.Latitude = val
		}
	}
	if lon := os.Getenv("SKYSENTRY_ANTENNA_LON"); lon != "" {
		if val, err := strconv.ParseFloat(lon, 64); err == nil {
			c.Antenna.Longitude = val
		}
	}
}
