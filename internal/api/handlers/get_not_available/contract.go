package get_not_available

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

type AvailabilityCalculator interface {
	Snapshot(ctx context.Context, companyID string, asOf time.Time, daysAhead int) (*availability.Snapshot, error)
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
