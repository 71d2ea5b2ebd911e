package availability

import "time"

// Snapshot недоступные даты (для компании) и слоты (общие для всех компаний)
type Snapshot struct {
	Dates []time.Time
	Times []time.Time
}

// SlotFill заполненность одного слота, от 0 до 1
type SlotFill struct {
	StartTime  time.Time
	Percentage float64
}
