package adsb

import "time"

// Aircraft represents one aircraft observed by the local receiver.
// All position data is in WGS84 coordinate system.
//
// Fields the feed did not report are nil; the receiver routinely tracks
// aircraft for which no position has been decoded yet.
type Aircraft struct {
	// Hex is the unique 24-bit ICAO aircraft address (e.g., "a12345")
	Hex string

	// Callsign is the flight number or aircraft registration, trimmed of
	// the trailing padding the transponder broadcasts. Empty if unknown.
	Callsign string

	// Squawk is the Mode A code as 4 octal digits. Empty if unknown.
	Squawk string

	// Latitude in decimal degrees (-90 to +90), nil if no position fix
	Latitude *float64

	// Longitude in decimal degrees (-180 to +180), nil if no position fix
	Longitude *float64

	// Altitude in feet above mean sea level, nil if not reported.
	// Aircraft on the ground report 0.
	Altitude *float64

	// GroundSpeed in knots, nil if not reported
	GroundSpeed *float64

	// Track is the ground track in degrees (0-359), nil if not reported.
	// 0 = North, 90 = East, 180 = South, 270 = West
	Track *float64

	// SeenAt is the timestamp of the last message from this aircraft
	SeenAt time.Time
}

// HasPosition reports whether the aircraft has a decoded lat/lon fix.
func (a *Aircraft) HasPosition() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// FeedSource is the interface all local aircraft feeds implement.
// This abstraction allows switching between receiver front ends
// (PiAware/SkyAware, raw dump1090, readsb) without touching callers.
type FeedSource interface {
	// Fetch returns the receiver's current aircraft list.
	Fetch() ([]Aircraft, error)

	// Close cleanly shuts down the feed connection.
	Close() error
}
