package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// ReservationAggregates агрегирующие запросы к хранилищу резерваций
type ReservationAggregates interface {
	SumTimeRequirement(ctx context.Context, filter domain.ReservationFilter) (int, error)
	SumByDate(ctx context.Context, filter domain.ReservationFilter) ([]domain.DateTotal, error)
	SumByStartTime(ctx context.Context, filter domain.ReservationFilter) ([]domain.StartTimeTotal, error)
}

// BlockerReader чтение периодов закрытия мойки
type BlockerReader interface {
	List(ctx context.Context, from, to *time.Time) ([]*domain.Blocker, error)
}

// SlotCatalog каталог слотов и лимитов
type SlotCatalog interface {
	FindSlotByStartHour(hour int) (domain.Slot, error)
	DailyLimitFor(companyID string) (domain.DailyLimit, error)
	Slots() []domain.Slot
	UnitMinutes() int
	Location() *time.Location
	RemainingSlotCapacityToday(asOf time.Time) int
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
