package scheduler

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

// SlotFillSource источник заполненности слотов (availability.Calculator)
type SlotFillSource interface {
	Now() time.Time
	SlotFillPercentage(ctx context.Context, date time.Time) ([]availability.SlotFill, error)
}

// GaugeRecorder приемник значений заполненности (*metrics.Metrics)
type GaugeRecorder interface {
	SetSlotFill(date string, startHour int, ratio float64)
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
