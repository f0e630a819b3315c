// Package plot renders aircraft positions as an ASCII scatter plot around a
// fixed antenna location, plus a tabular nearest-aircraft listing.
package plot

import (
	"strings"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/coordinates"
)

// Marker characters used on the grid.
const (
	// MarkerCallsign marks aircraft broadcasting a callsign
	MarkerCallsign = '#'

	// MarkerHigh marks aircraft above the altitude threshold
	MarkerHigh = '^'

	// MarkerLow marks aircraft at or below the altitude threshold
	MarkerLow = '+'

	// MarkerUnknown marks aircraft with no altitude data
	MarkerUnknown = 'X'

	// MarkerAntenna marks the antenna cell; always drawn last
	MarkerAntenna = 'O'
)

// Options controls the plot geometry and marker selection.
type Options struct {
	// Width and Height are the grid dimensions in characters
	Width  int
	Height int

	// LatSpan and LonSpan are the total degree spans mapped onto the
	// grid, centered on the antenna. Aircraft projecting outside the
	// grid are clipped, never wrapped.
	LatSpan float64
	LonSpan float64

	// AltThresholdFt splits high from low traffic for marker selection
	AltThresholdFt float64
}

// Grid is a rendered character grid. Row 0 is the northern edge.
type Grid struct {
	cells [][]rune

	// Plotted is the number of aircraft that landed inside the grid
	Plotted int

	// Clipped is the number of positioned aircraft outside the window
	Clipped int
}

// Render projects each aircraft's position onto a Width x Height grid
// centered on the antenna.
//
// The projection is linear in degrees: a cell column is
// (lon-antennaLon)/LonSpan*Width + Width/2, truncated; rows are the same
// with latitude inverted so north is up. An aircraft exactly at the antenna
// lands on the center cell. Aircraft without a position fix are skipped;
// aircraft projecting outside [0,Width)x[0,Height) are counted in Clipped
// and omitted.
func Render(aircraft []adsb.Aircraft, antenna coordinates.Geographic, opts Options) *Grid {
	cells := make([][]rune, opts.Height)
	for i := range cells {
		cells[i] = make([]rune, opts.Width)
		for j := range cells[i] {
			cells[i][j] = ' '
		}
	}
	g := &Grid{cells: cells}

	for _, ac := range aircraft {
		if !ac.HasPosition() {
			continue
		}

		col, row, ok := project(*ac.Latitude, *ac.Longitude, antenna, opts)
		if !ok {
			g.Clipped++
			continue
		}

		cells[row][col] = marker(ac, opts.AltThresholdFt)
		g.Plotted++
	}

	// The antenna overwrites any aircraft sharing its cell.
	if col, row, ok := project(antenna.Latitude, antenna.Longitude, antenna, opts); ok {
		cells[row][col] = MarkerAntenna
	}

	return g
}

// project maps a lat/lon onto grid coordinates.
// Returns ok=false when the cell falls outside the grid.
func project(lat, lon float64, antenna coordinates.Geographic, opts Options) (col, row int, ok bool) {
	col = int((lon-antenna.Longitude)/opts.LonSpan*float64(opts.Width) + float64(opts.Width)/2)
	row = int((antenna.Latitude-lat)/opts.LatSpan*float64(opts.Height) + float64(opts.Height)/2)

	if col < 0 || col >= opts.Width || row < 0 || row >= opts.Height {
		return 0, 0, false
	}
	return col, row, true
}

// marker picks the plot character for one aircraft.
func marker(ac adsb.Aircraft, altThresholdFt float64) rune {
	switch {
	case ac.Callsign != "":
		return MarkerCallsign
	case ac.Altitude != nil && *ac.Altitude > altThresholdFt:
		return MarkerHigh
	case ac.Altitude != nil:
		return MarkerLow
	default:
		return MarkerUnknown
	}
}

// At returns the character at a grid cell.
func (g *Grid) At(col, row int) rune {
	return g.cells[row][col]
}

// Rows returns the grid as strings, northern edge first, without borders.
func (g *Grid) Rows() []string {
	rows := make([]string, len(g.cells))
	for i, line := range g.cells {
		rows[i] = string(line)
	}
	return rows
}

// String renders the grid with a box border, ready for printing.
func (g *Grid) String() string {
	if len(g.cells) == 0 {
		return ""
	}
	width := len(g.cells[0])

	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", width) + "+\n")
	for _, row := range g.Rows() {
		b.WriteString("|" + row + "|\n")
	}
	b.WriteString("+" + strings.Repeat("-", width) + "+")
	return b.String()
}

// Legend describes the marker characters for display under the plot.
func Legend() string {
	return "Legend: # = callsign, ^ = high altitude, + = low altitude, X = no altitude, O = antenna"
}
