// Package agegroup classifies users into isolation brackets. Brackets are
// derived from the birth date at query time and never stored.
package agegroup

import "time"

// Bracket is the unit of eligibility isolation.
type Bracket string

const (
	// None marks users younger than MinAge; they are ineligible for the engine.
	None  Bracket = ""
	Minor Bracket = "minor"
	Adult Bracket = "adult"
)

const (
	MinAge   = 15
	AdultAge = 18
)

// Age returns the number of whole years between birth and now. Birth is a
// calendar date; now is read on the calendar of its own location.
func Age(birth, now time.Time) int {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()

	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}

// BracketOf classifies birth into a bracket; ok is false below MinAge.
func BracketOf(birth, now time.Time) (Bracket, bool) {
	age := Age(birth, now)
	switch {
	case age < MinAge:
		return None, false
	case age < AdultAge:
		return Minor, true
	default:
		return Adult, true
	}
}

// Same reports whether both birth dates fall into the same, valid bracket.
func Same(a, b, now time.Time) bool {
	ba, okA := BracketOf(a, now)
	bb, okB := BracketOf(b, now)
	return okA && okB && ba == bb
}

// DateRange bounds a birth date. Nil bounds are open.
//
//   - From: birth >= From
//   - To:   birth <= To
//   - Before: birth < Before
type DateRange struct {
	From   *time.Time
	To     *time.Time
	Before *time.Time
}

// Contains reports whether birth satisfies every bound of r.
func (r DateRange) Contains(birth time.Time) bool {
	if r.From != nil && birth.Before(*r.From) {
		return false
	}
	if r.To != nil && birth.After(*r.To) {
		return false
	}
	if r.Before != nil && !birth.Before(*r.Before) {
		return false
	}
	return true
}

// RangeFor returns the birth-date window for bracket b:
//
//	Minor: [now-17y, now-15y] inclusive
//	Adult: before now-18y
//
// Bounds are UTC midnights of now's calendar day, matching how birth dates
// are stored. For None the range is empty by construction (From after To).
func RangeFor(b Bracket, now time.Time) DateRange {
	day := DateOf(now)

	switch b {
	case Minor:
		from := day.AddDate(-(AdultAge - 1), 0, 0)
		to := day.AddDate(-MinAge, 0, 0)
		return DateRange{From: &from, To: &to}
	case Adult:
		before := day.AddDate(-AdultAge, 0, 0)
		return DateRange{Before: &before}
	default:
		from := day
		to := day.AddDate(0, 0, -1)
		return DateRange{From: &from, To: &to}
	}
}

// DateOf is the UTC midnight of t's calendar day in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
