package domain

// Slot a fixed daily time window with a wash capacity.
// Capacity is measured in washes, not in minutes.
type Slot struct {
	StartHour int
	EndHour   int
	Capacity  int
}

// CapacityMinutes returns the slot capacity converted to minutes
func (s Slot) CapacityMinutes(unitMinutes int) int {
	return s.Capacity * unitMinutes
}

// CompanyLimit daily wash quota of a company
type CompanyLimit struct {
	CompanyID  string
	DailyLimit int // washes per day
	// Unlimited marks the operating company whose staff is not bound by a quota
	Unlimited bool
}

// DailyLimit resolved quota for a company
type DailyLimit struct {
	Washes    int
	Unlimited bool
}

// Minutes returns the quota in minutes
func (l DailyLimit) Minutes(unitMinutes int) int {
	return l.Washes * unitMinutes
}
