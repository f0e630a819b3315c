package plot

import (
	"strings"
	"testing"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/coordinates"
)

var antenna = coordinates.Geographic{Latitude: 40.7128, Longitude: -74.0060}

func defaultOpts() Options {
	return Options{
		Width:          80,
		Height:         20,
		LatSpan:        2.0,
		LonSpan:        2.0,
		AltThresholdFt: 20000,
	}
}

func floatPtr(f float64) *float64 { return &f }

func positioned(hex string, lat, lon float64) adsb.Aircraft {
	return adsb.Aircraft{Hex: hex, Latitude: floatPtr(lat), Longitude: floatPtr(lon)}
}

// TestProjectAntennaCenter tests that the antenna position maps to the
// grid's center cell.
func TestProjectAntennaCenter(t *testing.T) {
	opts := defaultOpts()
	col, row, ok := project(antenna.Latitude, antenna.Longitude, antenna, opts)
	if !ok {
		t.Fatal("Expected antenna inside the grid")
	}
	if col != 40 || row != 10 {
		t.Errorf("Expected center cell (40, 10), got (%d, %d)", col, row)
	}
}

// TestProjectKnownOffset tests the documented projection example:
// 0.1° east of the antenna with a 2.0° span over 80 columns lands in
// column 44, with the row unchanged.
func TestProjectKnownOffset(t *testing.T) {
	opts := defaultOpts()
	col, row, ok := project(40.7128, -73.9060, antenna, opts)
	if !ok {
		t.Fatal("Expected position inside the grid")
	}
	if col != 44 {
		t.Errorf("Expected column 44, got %d", col)
	}
	if row != 10 {
		t.Errorf("Expected row 10, got %d", row)
	}
}

// TestProjectClipsOutsideSpan tests that out-of-window positions are
// clipped rather than wrapped.
func TestProjectClipsOutsideSpan(t *testing.T) {
	opts := defaultOpts()

	// 1.5° east is outside a 2.0° span centered on the antenna.
	if _, _, ok := project(40.7128, -72.5, antenna, opts); ok {
		t.Error("Expected position east of the window to be clipped")
	}
	if _, _, ok := project(44.0, -74.0060, antenna, opts); ok {
		t.Error("Expected position north of the window to be clipped")
	}
}

// TestRenderMarkers tests marker selection by callsign and altitude.
func TestRenderMarkers(t *testing.T) {
	opts := defaultOpts()

	withCallsign := positioned("a11111", 40.9, -74.0060)
	withCallsign.Callsign = "UAL123"
	withCallsign.Altitude = floatPtr(35000)

	high := positioned("a22222", 40.5, -74.0060)
	high.Altitude = floatPtr(35000)

	low := positioned("a33333", 40.7128, -74.5)
	low.Altitude = floatPtr(5000)

	unknown := positioned("a44444", 40.7128, -73.5)

	g := Render([]adsb.Aircraft{withCallsign, high, low, unknown}, antenna, opts)

	if g.Plotted != 4 {
		t.Fatalf("Expected 4 plotted aircraft, got %d", g.Plotted)
	}

	expect := func(lat, lon float64, want rune) {
		t.Helper()
		col, row, ok := project(lat, lon, antenna, opts)
		if !ok {
			t.Fatalf("Position (%f, %f) unexpectedly clipped", lat, lon)
		}
		if got := g.At(col, row); got != want {
			t.Errorf("Cell (%d, %d): expected %q, got %q", col, row, want, got)
		}
	}

	expect(40.9, -74.0060, MarkerCallsign)
	expect(40.5, -74.0060, MarkerHigh)
	expect(40.7128, -74.5, MarkerLow)
	expect(40.7128, -73.5, MarkerUnknown)
}

// TestRenderAntennaOverwrites tests that the antenna marker wins its cell.
func TestRenderAntennaOverwrites(t *testing.T) {
	opts := defaultOpts()
	onAntenna := positioned("a11111", antenna.Latitude, antenna.Longitude)
	onAntenna.Callsign = "UAL123"

	g := Render([]adsb.Aircraft{onAntenna}, antenna, opts)

	if got := g.At(40, 10); got != MarkerAntenna {
		t.Errorf("Expected antenna marker at the center, got %q", got)
	}
}

// TestRenderSkipsAndClips tests unpositioned and out-of-window aircraft.
func TestRenderSkipsAndClips(t *testing.T) {
	opts := defaultOpts()
	aircraft := []adsb.Aircraft{
		{Hex: "a11111"},                     // no position: skipped entirely
		positioned("a22222", 50.0, -74.0),   // far north: clipped
		positioned("a33333", 40.75, -74.0),  // inside
	}

	g := Render(aircraft, antenna, opts)
	if g.Plotted != 1 {
		t.Errorf("Expected 1 plotted, got %d", g.Plotted)
	}
	if g.Clipped != 1 {
		t.Errorf("Expected 1 clipped, got %d", g.Clipped)
	}
}

// TestGridString tests the bordered rendering shape.
func TestGridString(t *testing.T) {
	opts := Options{Width: 10, Height: 3, LatSpan: 1, LonSpan: 1, AltThresholdFt: 20000}
	g := Render(nil, antenna, opts)

	lines := strings.Split(g.String(), "\n")
	if len(lines) != 5 {
		t.Fatalf("Expected 5 lines (border + 3 rows + border), got %d", len(lines))
	}
	if lines[0] != "+----------+" {
		t.Errorf("Unexpected top border: %q", lines[0])
	}
	for i := 1; i <= 3; i++ {
		if len(lines[i]) != 12 || lines[i][0] != '|' {
			t.Errorf("Unexpected row %d: %q", i, lines[i])
		}
	}
}
