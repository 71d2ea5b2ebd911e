package admit_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// ReservationRepository интерфейс репозитория резерваций
type ReservationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	Update(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	CountActiveByUser(ctx context.Context, userID string, excludeID *string) (int, error)
	LockDate(ctx context.Context, date time.Time) error
}

// AvailabilityCalculator живые агрегаты занятости дней и слотов
type AvailabilityCalculator interface {
	ReservedMinutesOnDate(ctx context.Context, companyID string, date time.Time, excludeID *string) (int, error)
	ReservedMinutesInSlot(ctx context.Context, start time.Time, excludeID *string) (int, error)
	MinutesScheduledForRestOfToday(ctx context.Context, asOf time.Time, excludeID *string) (int, error)
	IsBlocked(ctx context.Context, t time.Time) (bool, error)
}

// SlotCatalog каталог слотов и лимитов
type SlotCatalog interface {
	FindSlotByStartHour(hour int) (domain.Slot, error)
	FindSlotByStartAndEndHour(startHour, endHour int) (domain.Slot, error)
	DailyLimitFor(companyID string) (domain.DailyLimit, error)
	UnitMinutes() int
	Location() *time.Location
	TimeRequirement(services []domain.ServiceType) int
	RemainingSlotCapacityToday(asOf time.Time) int
	SlotEnd(date time.Time, slot domain.Slot) time.Time
	DateOf(t time.Time) time.Time
}

// UserSource источник пользователей
type UserSource interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder учет решений о допуске
type MetricsRecorder interface {
	ObserveAdmission(outcome, reason string)
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
