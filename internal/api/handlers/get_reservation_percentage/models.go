package get_reservation_percentage

import (
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

// SlotPercentage HTTP response model
type SlotPercentage struct {
	StartTime  time.Time `json:"startTime"`
	Percentage float64   `json:"percentage"`
}

// FromSlotFills конвертирует заполненность слотов в HTTP response
func FromSlotFills(fills []availability.SlotFill) []SlotPercentage {
	out := make([]SlotPercentage, 0, len(fills))
	for _, f := range fills {
		out = append(out, SlotPercentage{StartTime: f.StartTime, Percentage: f.Percentage})
	}
	return out
}
