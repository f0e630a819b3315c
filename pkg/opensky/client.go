// Package opensky provides a client for the OpenSky Network REST API.
//
// The /states/all endpoint returns live state vectors, including the country
// of registration derived from each ICAO 24-bit address. Anonymous access is
// credit limited (400 credits/day); the credit cost of a call scales with the
// bounding-box area, so callers should gate requests through a credits.Budget
// and keep boxes small.
//
// API Documentation: https://openskynetwork.github.io/opensky-api/rest.html
package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/unklstewy/skysentry/pkg/coordinates"
)

const (
	// BaseURL is the OpenSky Network REST API base URL
	BaseURL = "https://opensky-network.org/api"

	// DefaultTimeout for API requests
	DefaultTimeout = 10 * time.Second
)

// Client represents an OpenSky Network API client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// Config contains configuration for the OpenSky client.
type Config struct {
	// BaseURL overrides the API base URL (for testing)
	BaseURL string

	// MinInterval is the minimum spacing between API calls.
	// 0 disables the transport-level guard.
	MinInterval time.Duration

	// Timeout for HTTP requests
	Timeout time.Duration
}

// NewClient creates a new OpenSky API client.
//
// The client enforces MinInterval between requests at the transport level
// (burst of 1). Daily credit accounting is the caller's concern; see the
// credits package.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(limit, 1),
	}
}

// StateVector is one aircraft state from /states/all.
// The API encodes each state as a positional JSON array; only the fields
// this system consumes are decoded.
type StateVector struct {
	// ICAO24 is the 24-bit transponder address in lowercase hex
	ICAO24 string

	// Callsign is the broadcast callsign, trimmed. Empty if none.
	Callsign string

	// OriginCountry is the country of registration inferred from the
	// ICAO24 allocation (e.g., "United States", "Germany")
	OriginCountry string

	// Longitude/Latitude in decimal degrees, nil if unknown
	Longitude *float64
	Latitude  *float64

	// OnGround reports whether the position was retrieved from a
	// surface position report
	OnGround bool
}

// Registration is the subset of a state vector used for the foreign check.
type Registration struct {
	// ICAO24 is the 24-bit transponder address in lowercase hex
	ICAO24 string

	// OriginCountry is the country of registration
	OriginCountry string
}

// States fetches all state vectors within a bounding box.
func (c *Client) States(ctx context.Context, bbox coordinates.BoundingBox) ([]StateVector, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("lamin", strconv.FormatFloat(bbox.LatMin, 'f', 6, 64))
	q.Set("lamax", strconv.FormatFloat(bbox.LatMax, 'f', 6, 64))
	q.Set("lomin", strconv.FormatFloat(bbox.LonMin, 'f', 6, 64))
	q.Set("lomax", strconv.FormatFloat(bbox.LonMax, 'f', 6, 64))
	reqURL := fmt.Sprintf("%s/states/all?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch state vectors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "OpenSky rate limit exceeded",
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp statesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	states := make([]StateVector, 0, len(apiResp.States))
	for _, raw := range apiResp.States {
		sv, ok := decodeStateVector(raw)
		if !ok {
			continue
		}
		states = append(states, sv)
	}

	return states, nil
}

// Registrations fetches state vectors for a bounding box and indexes the
// registration data by lowercase ICAO24 for O(1) joins against feed data.
func (c *Client) Registrations(ctx context.Context, bbox coordinates.BoundingBox) (map[string]Registration, error) {
	states, err := c.States(ctx, bbox)
	if err != nil {
		return nil, err
	}

	regs := make(map[string]Registration, len(states))
	for _, sv := range states {
		regs[sv.ICAO24] = Registration{
			ICAO24:        sv.ICAO24,
			OriginCountry: sv.OriginCountry,
		}
	}
	return regs, nil
}

// Close cleanly shuts down the client.
// For OpenSky, this is a no-op as there are no persistent connections.
func (c *Client) Close() error {
	return nil
}

// statesResponse represents the JSON response from /states/all.
// Each state is a positional array with mixed element types.
type statesResponse struct {
	Time   int64             `json:"time"`
	States []json.RawMessage `json:"states"`
}

// decodeStateVector parses one positional state array.
// Indices: 0 icao24, 1 callsign, 2 origin_country, 5 longitude, 6 latitude,
// 8 on_ground. Entries without an icao24 are dropped.
func decodeStateVector(raw json.RawMessage) (StateVector, bool) {
	var fields []interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return StateVector{}, false
	}

	icao := stringAt(fields, 0)
	if icao == "" {
		return StateVector{}, false
	}

	return StateVector{
		ICAO24:        strings.ToLower(icao),
		Callsign:      strings.TrimSpace(stringAt(fields, 1)),
		OriginCountry: strings.TrimSpace(stringAt(fields, 2)),
		Longitude:     floatAt(fields, 5),
		Latitude:      floatAt(fields, 6),
		OnGround:      boolAt(fields, 8),
	}, true
}

func stringAt(fields []interface{}, i int) string {
	if i >= len(fields) {
		return ""
	}
	s, _ := fields[i].(string)
	return s
}

func floatAt(fields []interface{}, i int) *float64 {
	if i >= len(fields) {
		return nil
	}
	if f, ok := fields[i].(float64); ok {
		return &f
	}
	return nil
}

func boolAt(fields []interface{}, i int) bool {
	if i >= len(fields) {
		return false
	}
	b, _ := fields[i].(bool)
	return b
}

// RateLimitError represents an HTTP 429 response from the API.
// This is distinct from local credit suppression, which never reaches
// the network at all.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	if rle, ok := err.(*RateLimitError); ok {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter extracts the Retry-After header value.
// Returns the duration to wait, or 0 if the header is not present.
// Supports both delay-seconds (integer) and HTTP-date formats.
func parseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}

	return 0
}
