// Package report prints color-coded console alerts for classified aircraft.
//
// Output is display-only: one line per military-or-foreign aircraft per poll
// cycle, with duplicate suppression so an aircraft loitering in range does
// not repeat every tick. Aircraft matching neither category are suppressed.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/classify"
)

// Pair is one aircraft with its classification for the current cycle.
type Pair struct {
	Aircraft adsb.Aircraft
	Result   classify.Result
}

// Reporter writes alert lines to a console.
type Reporter struct {
	w io.Writer

	militaryStyle lipgloss.Style
	foreignStyle  lipgloss.Style
	statusStyle   lipgloss.Style

	// reported maps hex to the alert key last printed for it, so a
	// reclassification (e.g. registration data arriving) re-alerts.
	reported map[string]string
}

// NewReporter creates a Reporter writing to w.
// Military alerts render red, foreign-only alerts yellow, status lines green.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{
		w:             w,
		militaryStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		foreignStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		statusStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		reported:      make(map[string]string),
	}
}

// ReportCycle prints alerts for the cycle's classified aircraft and a
// status summary. Previously alerted aircraft are only re-printed when
// their classification changed; aircraft that left the feed are forgotten
// so a return triggers a fresh alert.
func (r *Reporter) ReportCycle(now time.Time, pairs []Pair) {
	current := make(map[string]string, len(pairs))
	military, foreign := 0, 0

	for _, p := range pairs {
		if !p.Result.Military && !p.Result.Foreign {
			continue
		}
		if p.Result.Military {
			military++
		}
		if p.Result.Foreign {
			foreign++
		}

		key := alertKey(p.Result)
		current[p.Aircraft.Hex] = key
		if r.reported[p.Aircraft.Hex] == key {
			continue
		}
		r.reported[p.Aircraft.Hex] = key

		line := formatAlert(p)
		if p.Result.Military {
			line = r.militaryStyle.Render(line)
		} else {
			line = r.foreignStyle.Render(line)
		}
		fmt.Fprintf(r.w, "%s %s\n", now.Format("2006-01-02 15:04:05"), line)
	}

	// Forget aircraft no longer in range.
	for hex := range r.reported {
		if _, ok := current[hex]; !ok {
			delete(r.reported, hex)
		}
	}

	r.Status(now, "Tracking %d military and %d foreign aircraft", military, foreign)
}

// Status prints a green status line with a timestamp.
func (r *Reporter) Status(now time.Time, format string, args ...interface{}) {
	line := r.statusStyle.Render(fmt.Sprintf(format, args...))
	fmt.Fprintf(r.w, "%s %s\n", now.Format("2006-01-02 15:04:05"), line)
}

func alertKey(res classify.Result) string {
	return fmt.Sprintf("mil=%t foreign=%t country=%s", res.Military, res.Foreign, res.Country)
}

// formatAlert builds the alert body for one aircraft.
func formatAlert(p Pair) string {
	ac := p.Aircraft

	category := "FOREIGN AIRCRAFT"
	if p.Result.Military {
		category = "MILITARY AIRCRAFT"
	}

	fields := []string{
		fmt.Sprintf("%s: ICAO: %s", category, strings.ToUpper(ac.Hex)),
		fmt.Sprintf("Callsign: %s", orUnknown(ac.Callsign)),
	}
	if p.Result.Military && p.Result.Foreign {
		fields = append(fields, "Status: Military + Foreign")
	}
	if p.Result.CountryKnown {
		fields = append(fields, fmt.Sprintf("Country: %s", p.Result.Country))
	}
	fields = append(fields,
		fmt.Sprintf("Alt: %s ft", numOrUnknown(ac.Altitude, "%.0f")),
		fmt.Sprintf("Speed: %s kts", numOrUnknown(ac.GroundSpeed, "%.0f")),
		fmt.Sprintf("Heading: %s°", numOrUnknown(ac.Track, "%.0f")),
	)
	if ac.HasPosition() {
		fields = append(fields, fmt.Sprintf("Position: %.4f, %.4f", *ac.Latitude, *ac.Longitude))
	} else {
		fields = append(fields, "Position: unknown")
	}

	return strings.Join(fields, " | ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func numOrUnknown(v *float64, format string) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf(format, *v)
}
