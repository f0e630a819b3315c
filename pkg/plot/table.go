package plot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/coordinates"
)

// Row is one aircraft in the nearest-aircraft table.
type Row struct {
	Aircraft adsb.Aircraft

	// DistanceNM is the great-circle distance from the antenna
	DistanceNM float64
}

// NearestTable lists positioned aircraft sorted by distance from the
// antenna, nearest first, tie-broken by hex code ascending, capped at limit.
// Aircraft clipped from the plot window still appear here; only aircraft
// without a position fix are excluded.
func NearestTable(aircraft []adsb.Aircraft, antenna coordinates.Geographic, limit int) []Row {
	rows := make([]Row, 0, len(aircraft))
	for _, ac := range aircraft {
		if !ac.HasPosition() {
			continue
		}
		pos := coordinates.Geographic{Latitude: *ac.Latitude, Longitude: *ac.Longitude}
		rows = append(rows, Row{
			Aircraft:   ac,
			DistanceNM: coordinates.DistanceNauticalMiles(antenna, pos),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DistanceNM != rows[j].DistanceNM {
			return rows[i].DistanceNM < rows[j].DistanceNM
		}
		return rows[i].Aircraft.Hex < rows[j].Aircraft.Hex
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// FormatTable renders rows as a fixed-width text table.
func FormatTable(rows []Row) string {
	header := fmt.Sprintf("| %-8s | %-8s | %-6s | %8s | %6s | %7s | %7s |",
		"ICAO", "Flight", "Squawk", "Alt ft", "Kts", "Trk", "Dist nm")
	rule := strings.Repeat("-", len(header))

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(header + "\n")
	b.WriteString(rule + "\n")

	for _, row := range rows {
		ac := row.Aircraft
		b.WriteString(fmt.Sprintf("| %-8s | %-8s | %-6s | %8s | %6s | %7s | %7.1f |\n",
			strings.ToUpper(ac.Hex),
			orNA(ac.Callsign),
			orNA(ac.Squawk),
			fmtNum(ac.Altitude, "%.0f"),
			fmtNum(ac.GroundSpeed, "%.0f"),
			fmtNum(ac.Track, "%.0f"),
			row.DistanceNM,
		))
	}

	b.WriteString(rule)
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func fmtNum(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}
