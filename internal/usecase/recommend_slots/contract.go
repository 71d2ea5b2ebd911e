package recommend_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

// AvailabilitySource снимок недоступных дат и слотов
type AvailabilitySource interface {
	Snapshot(ctx context.Context, companyID string, asOf time.Time, daysAhead int) (*availability.Snapshot, error)
}

// SlotCatalog каталог слотов
type SlotCatalog interface {
	Slots() []domain.Slot
	Location() *time.Location
	SlotStart(date time.Time, slot domain.Slot) time.Time
	DateOf(t time.Time) time.Time
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
