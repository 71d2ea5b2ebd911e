package get_reservation_percentage

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

type AvailabilityCalculator interface {
	SlotFillPercentage(ctx context.Context, date time.Time) ([]availability.SlotFill, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
