package get_not_available

import (
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

// NotAvailableResponse HTTP response model
type NotAvailableResponse struct {
	Dates []string    `json:"dates"` // "2024-05-08"
	Times []time.Time `json:"times"` // начала занятых слотов
}

// FromSnapshot конвертирует снимок доступности в HTTP response
func FromSnapshot(s *availability.Snapshot) *NotAvailableResponse {
	resp := &NotAvailableResponse{
		Dates: make([]string, 0, len(s.Dates)),
		Times: make([]time.Time, 0, len(s.Times)),
	}
	for _, d := range s.Dates {
		resp.Dates = append(resp.Dates, d.Format(domain.DateFormat))
	}
	resp.Times = append(resp.Times, s.Times...)
	return resp
}
