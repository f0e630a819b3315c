// Package credits tracks the daily credit budget and minimum call spacing
// for the OpenSky API.
//
// Anonymous OpenSky access is billed in credits: each /states/all call costs
// 1-4 credits depending on the bounding-box area, against a daily allowance.
// A Budget decides locally whether a call may be issued "now"; a refusal is
// an expected control path, not an error, and the caller simply skips the
// lookup for that cycle.
package credits

import "time"

// Budget tracks credit usage for one API account over the process lifetime.
//
// It is an explicit value handed to whoever owns the polling loop, not a
// package-level singleton. A Budget is not safe for concurrent use; the
// single-threaded poll loop is its only intended owner.
type Budget struct {
	// DailyLimit is the maximum number of credits per calendar day
	DailyLimit int

	// MinInterval is the minimum spacing between allowed calls
	MinInterval time.Duration

	usedToday int
	day       time.Time
	lastCall  time.Time
}

// NewBudget creates a Budget with no usage recorded.
func NewBudget(dailyLimit int, minInterval time.Duration) *Budget {
	return &Budget{
		DailyLimit:  dailyLimit,
		MinInterval: minInterval,
	}
}

// Allow reports whether a call of the given credit cost may be issued at
// time now. A call is refused when it would come too soon after the last
// allowed call, or when it would push today's usage past the daily limit.
//
// Allow also performs the calendar-day rollover: when now falls on a
// different date than the recorded usage, the daily counter resets to zero.
// The rollover is idempotent within a day.
func (b *Budget) Allow(now time.Time, cost int) bool {
	b.rollover(now)

	if !b.lastCall.IsZero() && now.Sub(b.lastCall) < b.MinInterval {
		return false
	}
	if b.usedToday+cost > b.DailyLimit {
		return false
	}
	return true
}

// Record charges the cost of an issued call and stamps the call time.
// Callers invoke this only after Allow returned true and the call was
// actually made.
func (b *Budget) Record(now time.Time, cost int) {
	b.rollover(now)
	b.usedToday += cost
	b.lastCall = now
}

// UsedToday returns the credits charged so far in now's calendar day.
func (b *Budget) UsedToday(now time.Time) int {
	b.rollover(now)
	return b.usedToday
}

// Remaining returns the credits still available in now's calendar day.
func (b *Budget) Remaining(now time.Time) int {
	b.rollover(now)
	return b.DailyLimit - b.usedToday
}

// rollover resets the daily counter when the calendar date changes.
func (b *Budget) rollover(now time.Time) {
	if sameDay(b.day, now) {
		return
	}
	b.day = now
	b.usedToday = 0
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// OpenSky credit cost tiers by bounding-box area in square degrees.
const (
	areaTier1 = 25.0
	areaTier2 = 100.0
	areaTier3 = 400.0
)

// CostForArea returns the credit cost of one /states/all call for a
// bounding box of the given area in square degrees.
func CostForArea(areaSqDeg float64) int {
	switch {
	case areaSqDeg < areaTier1:
		return 1
	case areaSqDeg < areaTier2:
		return 2
	case areaSqDeg < areaTier3:
		return 3
	default:
		return 4
	}
}
