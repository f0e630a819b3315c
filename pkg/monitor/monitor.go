// Package monitor runs the foreign/military watch loop: poll the local
// feed, refresh registration data when the credit budget allows, classify,
// and report.
//
// The loop is single-threaded and self-healing: network and parse failures
// are logged and the cycle continues with whatever data survives; only
// process termination stops it.
package monitor

import (
	"context"
	"log"
	"time"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/classify"
	"github.com/unklstewy/skysentry/pkg/coordinates"
	"github.com/unklstewy/skysentry/pkg/credits"
	"github.com/unklstewy/skysentry/pkg/opensky"
	"github.com/unklstewy/skysentry/pkg/report"
)

// RegistrationSource provides hex-indexed registration data for a region.
// Satisfied by *opensky.Client.
type RegistrationSource interface {
	Registrations(ctx context.Context, bbox coordinates.BoundingBox) (map[string]opensky.Registration, error)
}

// Options configures a Monitor.
type Options struct {
	// Feed is the local receiver feed
	Feed adsb.FeedSource

	// Lookup is the registration API client
	Lookup RegistrationSource

	// Budget gates lookup calls. Required.
	Budget *credits.Budget

	// Classifier labels each aircraft. Required.
	Classifier *classify.Classifier

	// Reporter receives each cycle's results. Required.
	Reporter *report.Reporter

	// BBox scopes the registration query
	BBox coordinates.BoundingBox

	// CostPerCall is the credit cost of one lookup.
	// 0 derives the cost from the bounding-box area.
	CostPerCall int

	// Now supplies the current time; defaults to time.Now. Tests inject
	// a fake clock here.
	Now func() time.Time

	// Logf receives per-cycle diagnostics; defaults to log.Printf.
	Logf func(format string, args ...interface{})
}

// Monitor owns the watch loop state.
type Monitor struct {
	opts Options
	cost int

	// registrations is the last successful lookup snapshot. It outlives
	// suppressed or failed lookups so classification degrades gracefully
	// instead of flapping to unknown.
	registrations map[string]opensky.Registration
}

// New creates a Monitor.
func New(opts Options) *Monitor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}

	cost := opts.CostPerCall
	if cost <= 0 {
		cost = credits.CostForArea(opts.BBox.AreaSquareDegrees())
	}

	return &Monitor{
		opts: opts,
		cost: cost,
	}
}

// Cycle executes one poll: fetch the feed, refresh registrations if the
// budget allows, and classify every observed aircraft.
//
// Returns nil when the feed itself was unreachable (nothing to classify);
// lookup failures only mean the previous registration snapshot is reused.
func (m *Monitor) Cycle(ctx context.Context) []report.Pair {
	now := m.opts.Now()

	aircraft, err := m.opts.Feed.Fetch()
	if err != nil {
		m.opts.Logf("feed fetch failed, skipping cycle: %v", err)
		return nil
	}

	m.refreshRegistrations(ctx, now)

	pairs := make([]report.Pair, 0, len(aircraft))
	for _, ac := range aircraft {
		var reg *opensky.Registration
		if r, ok := m.registrations[ac.Hex]; ok {
			reg = &r
		}
		pairs = append(pairs, report.Pair{
			Aircraft: ac,
			Result:   m.opts.Classifier.Classify(ac, reg),
		})
	}

	return pairs
}

// refreshRegistrations performs a budget-gated lookup. A refused call is a
// normal control path; the previous snapshot stays in place either way.
func (m *Monitor) refreshRegistrations(ctx context.Context, now time.Time) {
	if !m.opts.Budget.Allow(now, m.cost) {
		return
	}

	regs, err := m.opts.Lookup.Registrations(ctx, m.opts.BBox)

	// The request went out; charge it whether or not it succeeded.
	m.opts.Budget.Record(now, m.cost)

	if err != nil {
		if rle, ok := opensky.IsRateLimitError(err); ok {
			m.opts.Logf("registration lookup rate limited upstream: %v", rle)
		} else {
			m.opts.Logf("registration lookup failed, reusing last snapshot: %v", err)
		}
		return
	}

	m.registrations = regs
	m.opts.Logf("refreshed registration data: %d aircraft, %d/%d credits used today",
		len(regs), m.opts.Budget.UsedToday(now), m.opts.Budget.DailyLimit)
}

// Run polls until the context is cancelled, reporting every interval.
// The first cycle fires immediately.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if pairs := m.Cycle(ctx); pairs != nil {
			m.opts.Reporter.ReportCycle(m.opts.Now(), pairs)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
