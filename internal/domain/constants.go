package domain

import "time"

// Default configuration values
const (
	DefaultUnitMinutes          = 12
	DefaultUserConcurrentLimit  = 2
	DefaultDaysAhead            = 365
	CarpetTimeRequirementFactor = 2
)

// Business validation constants
const (
	MaxDaysAhead             = 365 * 2
	MaxCommentLength         = 500
	MaxVehiclePlateLength    = 16
	MaxBlockerSpanMonths     = 1
	RecommendedSlotsMaxCount = 3
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DateOf returns midnight of t's calendar day in t's location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last second of t's calendar day in t's location
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// IsSameDay returns true if both instants fall on the same calendar day
func IsSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsWeekend returns true for Saturday and Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
