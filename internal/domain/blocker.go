package domain

import "time"

// Blocker a period when the car wash is closed and nothing can be reserved
type Blocker struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Comment   *string
	CreatedAt time.Time
}

// Covers returns true if t falls inside the blocked period (inclusive)
func (b *Blocker) Covers(t time.Time) bool {
	return !t.Before(b.StartTime) && !t.After(b.EndTime)
}

// Overlaps returns true if the two blocked periods share any instant
func (b *Blocker) Overlaps(other *Blocker) bool {
	return !b.EndTime.Before(other.StartTime) && !other.EndTime.Before(b.StartTime)
}
