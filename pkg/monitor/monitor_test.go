package monitor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/classify"
	"github.com/unklstewy/skysentry/pkg/coordinates"
	"github.com/unklstewy/skysentry/pkg/credits"
	"github.com/unklstewy/skysentry/pkg/opensky"
	"github.com/unklstewy/skysentry/pkg/report"
)

type fakeFeed struct {
	aircraft []adsb.Aircraft
	err      error
}

func (f *fakeFeed) Fetch() ([]adsb.Aircraft, error) { return f.aircraft, f.err }
func (f *fakeFeed) Close() error                    { return nil }

type fakeLookup struct {
	regs  map[string]opensky.Registration
	err   error
	calls int
}

func (f *fakeLookup) Registrations(ctx context.Context, bbox coordinates.BoundingBox) (map[string]opensky.Registration, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.regs, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time           { return c.now }
func (c *fakeClock) Advance(d time.Duration)  { c.now = c.now.Add(d) }

func testMonitor(t *testing.T, feed *fakeFeed, lookup *fakeLookup, budget *credits.Budget, clock *fakeClock) *Monitor {
	t.Helper()

	classifier, err := classify.NewClassifier(classify.Policy{
		CallsignPatterns: []string{`^RCH\d`},
		ICAOPrefixes:     []string{"AE"},
		HomeCountry:      "United States",
	})
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}

	return New(Options{
		Feed:       feed,
		Lookup:     lookup,
		Budget:     budget,
		Classifier: classifier,
		Reporter:   report.NewReporter(&bytes.Buffer{}),
		BBox:       coordinates.BoundingBox{LatMin: 40, LatMax: 41, LonMin: -75, LonMax: -73},
		CostPerCall: 1,
		Now:        clock.Now,
		Logf:       func(string, ...interface{}) {},
	})
}

// TestCycleMilitaryRegardlessOfLookup tests that the RCH4521 scenario
// classifies as military whether or not the lookup produced data.
func TestCycleMilitaryRegardlessOfLookup(t *testing.T) {
	feed := &fakeFeed{aircraft: []adsb.Aircraft{{Hex: "a12345", Callsign: "RCH4521"}}}
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}

	for name, lookup := range map[string]*fakeLookup{
		"lookup succeeds": {regs: map[string]opensky.Registration{}},
		"lookup fails":    {err: errors.New("connection refused")},
	} {
		t.Run(name, func(t *testing.T) {
			m := testMonitor(t, feed, lookup, credits.NewBudget(400, 0), clock)
			pairs := m.Cycle(context.Background())

			if len(pairs) != 1 {
				t.Fatalf("Expected 1 pair, got %d", len(pairs))
			}
			if !pairs[0].Result.Military {
				t.Error("Expected military classification regardless of lookup outcome")
			}
		})
	}
}

// TestCycleForeignJoin tests the hex join against lookup data.
func TestCycleForeignJoin(t *testing.T) {
	feed := &fakeFeed{aircraft: []adsb.Aircraft{
		{Hex: "3c6444", Callsign: "DLH9LF"},
		{Hex: "a835af", Callsign: "UAL123"},
		{Hex: "ffffff", Callsign: "XYZ999"}, // not in lookup data
	}}
	lookup := &fakeLookup{regs: map[string]opensky.Registration{
		"3c6444": {ICAO24: "3c6444", OriginCountry: "Germany"},
		"a835af": {ICAO24: "a835af", OriginCountry: "United States"},
	}}
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}

	m := testMonitor(t, feed, lookup, credits.NewBudget(400, 0), clock)
	pairs := m.Cycle(context.Background())

	if len(pairs) != 3 {
		t.Fatalf("Expected 3 pairs, got %d", len(pairs))
	}

	byHex := make(map[string]classify.Result)
	for _, p := range pairs {
		byHex[p.Aircraft.Hex] = p.Result
	}

	if !byHex["3c6444"].Foreign {
		t.Error("Expected German-registered aircraft to be foreign")
	}
	if byHex["a835af"].Foreign {
		t.Error("Did not expect home-country aircraft to be foreign")
	}
	if byHex["ffffff"].Foreign || byHex["ffffff"].CountryKnown {
		t.Error("Expected unknown registration for hex missing from lookup data")
	}
}

// TestCycleBudgetSuppression tests that a refused budget skips the lookup
// and the last snapshot keeps serving classifications.
func TestCycleBudgetSuppression(t *testing.T) {
	feed := &fakeFeed{aircraft: []adsb.Aircraft{{Hex: "3c6444", Callsign: "DLH9LF"}}}
	lookup := &fakeLookup{regs: map[string]opensky.Registration{
		"3c6444": {ICAO24: "3c6444", OriginCountry: "Germany"},
	}}
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	budget := credits.NewBudget(400, 5*time.Minute)

	m := testMonitor(t, feed, lookup, budget, clock)

	// First cycle performs the lookup.
	pairs := m.Cycle(context.Background())
	if lookup.calls != 1 {
		t.Fatalf("Expected 1 lookup call, got %d", lookup.calls)
	}
	if !pairs[0].Result.Foreign {
		t.Fatal("Expected foreign after first lookup")
	}

	// 30 seconds later the interval gate refuses; snapshot still serves.
	clock.Advance(30 * time.Second)
	pairs = m.Cycle(context.Background())
	if lookup.calls != 1 {
		t.Errorf("Expected lookup suppressed within MinInterval, got %d calls", lookup.calls)
	}
	if !pairs[0].Result.Foreign {
		t.Error("Expected stale snapshot to keep serving foreign classification")
	}

	// After the interval passes, the lookup refreshes.
	clock.Advance(5 * time.Minute)
	m.Cycle(context.Background())
	if lookup.calls != 2 {
		t.Errorf("Expected lookup to resume after MinInterval, got %d calls", lookup.calls)
	}
}

// TestCycleLookupFailureKeepsSnapshot tests stale-data behavior on API errors.
func TestCycleLookupFailureKeepsSnapshot(t *testing.T) {
	feed := &fakeFeed{aircraft: []adsb.Aircraft{{Hex: "3c6444", Callsign: "DLH9LF"}}}
	lookup := &fakeLookup{regs: map[string]opensky.Registration{
		"3c6444": {ICAO24: "3c6444", OriginCountry: "Germany"},
	}}
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}

	m := testMonitor(t, feed, lookup, credits.NewBudget(400, 0), clock)
	m.Cycle(context.Background())

	// The API starts failing; classification must not regress to unknown.
	lookup.err = errors.New("bad gateway")
	clock.Advance(time.Minute)
	pairs := m.Cycle(context.Background())

	if !pairs[0].Result.Foreign {
		t.Error("Expected previous registration snapshot to persist through lookup failure")
	}
}

// TestCycleFeedFailure tests that a dead feed yields no pairs but does not
// panic or spend credits.
func TestCycleFeedFailure(t *testing.T) {
	feed := &fakeFeed{err: errors.New("connection refused")}
	lookup := &fakeLookup{regs: map[string]opensky.Registration{}}
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	budget := credits.NewBudget(400, 0)

	m := testMonitor(t, feed, lookup, budget, clock)
	if pairs := m.Cycle(context.Background()); pairs != nil {
		t.Errorf("Expected nil pairs on feed failure, got %d", len(pairs))
	}
	if budget.UsedToday(clock.Now()) != 0 {
		t.Error("Expected no credits spent when the feed is down")
	}
}

// TestCycleChargesFailedLookups tests conservative credit accounting.
func TestCycleChargesFailedLookups(t *testing.T) {
	feed := &fakeFeed{aircraft: []adsb.Aircraft{{Hex: "a12345"}}}
	lookup := &fakeLookup{err: errors.New("bad gateway")}
	clock := &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	budget := credits.NewBudget(400, 0)

	m := testMonitor(t, feed, lookup, budget, clock)
	m.Cycle(context.Background())

	if used := budget.UsedToday(clock.Now()); used != 1 {
		t.Errorf("Expected issued-but-failed lookup to be charged, got %d credits used", used)
	}
}

// TestCostDerivedFromArea tests CostPerCall auto-derivation.
func TestCostDerivedFromArea(t *testing.T) {
	classifier, _ := classify.NewClassifier(classify.Policy{})
	m := New(Options{
		Feed:       &fakeFeed{},
		Lookup:     &fakeLookup{},
		Budget:     credits.NewBudget(400, 0),
		Classifier: classifier,
		Reporter:   report.NewReporter(&bytes.Buffer{}),
		// 5° x 6° = 30 square degrees → 2 credits.
		BBox: coordinates.BoundingBox{LatMin: 40, LatMax: 45, LonMin: -80, LonMax: -74},
	})

	if m.cost != 2 {
		t.Errorf("Expected derived cost 2 for a 30 sq deg box, got %d", m.cost)
	}
}
