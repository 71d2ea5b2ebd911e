package admit_reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-CarWashService/internal/infra/storage/reservation"
	userClient "github.com/m04kA/SMC-CarWashService/internal/integrations/userservice"
	"github.com/m04kA/SMC-CarWashService/internal/service/catalog"
	"github.com/m04kA/SMC-CarWashService/pkg/txmanager"
)

// Исходы решения для метрик
const (
	outcomeAdmitted = "admitted"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// UseCase use case допуска новой или измененной резервации
type UseCase struct {
	repo             ReservationRepository
	availability     AvailabilityCalculator
	catalog          SlotCatalog
	users            UserSource
	txManager        TransactionManager
	metrics          MetricsRecorder
	timeProvider     TimeProvider
	logger           Logger
	concurrencyLimit int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	repo ReservationRepository,
	availability AvailabilityCalculator,
	catalog SlotCatalog,
	users UserSource,
	txManager TransactionManager,
	metrics MetricsRecorder,
	concurrencyLimit int,
	logger Logger,
) *UseCase {
	if concurrencyLimit <= 0 {
		concurrencyLimit = domain.DefaultUserConcurrentLimit
	}
	return &UseCase{
		repo:             repo,
		availability:     availability,
		catalog:          catalog,
		users:            users,
		txManager:        txManager,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
		concurrencyLimit: concurrencyLimit,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute принимает решение о допуске.
// Проверки и запись выполняются в одной сериализуемой транзакции под блокировкой дня.
// Конфликт сериализации повторяется один раз; второй конфликт возвращается как ErrConflict.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.ActingUser == nil {
		return nil, fmt.Errorf("%w: acting user is required", ErrInternal)
	}
	uc.logger.Info("AdmitReservation: acting=%s, reservation=%q, owner=%q, start=%s, services=%v",
		req.ActingUser.ID, req.ReservationID, req.UserID, req.StartTime.Format(time.RFC3339), req.Services)

	var (
		resp *Response
		err  error
	)
	for attempt := 1; attempt <= 2; attempt++ {
		resp, err = uc.attempt(ctx, req)
		if !errors.Is(err, txmanager.ErrSerializationFailure) {
			break
		}
		uc.logger.Warn("AdmitReservation: serialization conflict on attempt %d: %v", attempt, err)
	}
	if errors.Is(err, txmanager.ErrSerializationFailure) {
		err = reject(StageCapacityChecked, ErrConflict, "concurrent admission, please retry")
	}

	var rejection *RejectionError
	switch {
	case err == nil:
		uc.observe(outcomeAdmitted, "")
		uc.logger.Info("AdmitReservation: admitted reservation id=%s, start=%s, minutes=%d",
			resp.Reservation.ID, resp.Reservation.StartTime.Format(time.RFC3339), resp.Reservation.TimeRequirementMinutes)
		return resp, nil
	case errors.As(err, &rejection):
		uc.observe(outcomeRejected, rejection.Code())
		uc.logger.Warn("AdmitReservation: rejected at stage=%s: %v", rejection.Stage, rejection)
		return nil, rejection
	default:
		uc.observe(outcomeError, "")
		uc.logger.Error("AdmitReservation: failed: %v", err)
		return nil, err
	}
}

// attempt одна попытка допуска в транзакции
func (uc *UseCase) attempt(ctx context.Context, req *Request) (*Response, error) {
	var result *Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		resp, err := uc.admit(txCtx, req)
		if err != nil {
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *UseCase) admit(ctx context.Context, req *Request) (*Response, error) {
	acting := req.ActingUser
	now := uc.timeProvider.Now().In(uc.catalog.Location())

	// 1. Для редактирования загружаем резервацию и проверяем права на неё
	var existing *domain.Reservation
	if !req.IsNew() {
		found, err := uc.repo.GetByID(ctx, req.ReservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return nil, reject(StageProposed, ErrReservationNotFound, "id=%s", req.ReservationID)
			}
			return nil, fmt.Errorf("%w: failed to get reservation: %w", ErrInternal, err)
		}
		if !acting.CanActFor(found.UserID) {
			return nil, reject(StageProposed, ErrForbidden, "reservation id=%s belongs to another user", found.ID)
		}
		existing = found
	}

	// 2. Нормализация предложения
	res, rejection := uc.normalize(req, existing)
	if rejection != nil {
		return nil, rejection
	}

	// 3. Структурные проверки
	slot, rejection := uc.validateStructure(res, now)
	if rejection != nil {
		return nil, rejection
	}

	blocked, err := uc.availability.IsBlocked(ctx, res.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check blockers: %w", ErrInternal, err)
	}
	if blocked {
		return nil, reject(StageStructurallyValidated, ErrBlocked, "start=%s", res.StartTime.Format(time.RFC3339))
	}

	// 4. Права действующего пользователя и владелец
	if res.UserID != acting.ID && !acting.IsPrivileged() {
		return nil, reject(StageStructurallyValidated, ErrForbidden, "user %s cannot reserve for %s", acting.ID, res.UserID)
	}

	if existing != nil {
		if res.UserID != existing.UserID {
			return nil, reject(StageStructurallyValidated, ErrOwnerChange, "owner is %s", existing.UserID)
		}
		res.CompanyID = existing.CompanyID
	} else {
		owner := acting
		if res.UserID != acting.ID {
			owner, err = uc.users.GetUser(ctx, res.UserID)
			if err != nil {
				if errors.Is(err, userClient.ErrUserNotFound) {
					return nil, reject(StageStructurallyValidated, ErrUserNotFound, "id=%s", res.UserID)
				}
				return nil, fmt.Errorf("%w: failed to get owner: %w", ErrInternal, err)
			}
		}
		res.CompanyID = owner.CompanyID
	}

	limit, err := uc.catalog.DailyLimitFor(res.CompanyID)
	if err != nil {
		if errors.Is(err, catalog.ErrCompanyNotFound) {
			return nil, reject(StageStructurallyValidated, ErrUnknownCompany, "company=%q", res.CompanyID)
		}
		return nil, fmt.Errorf("%w: failed to get daily limit: %w", ErrInternal, err)
	}

	// 5. Время, которое займет резервация
	res.TimeRequirementMinutes = uc.catalog.TimeRequirement(res.Services)
	requirement := res.TimeRequirementMinutes
	unit := uc.catalog.UnitMinutes()

	var excludeID *string
	if existing != nil {
		excludeID = &existing.ID
	}

	// Все агрегаты дня и его слотов читаются под блокировкой дня
	if err := uc.repo.LockDate(ctx, res.Date); err != nil {
		return nil, fmt.Errorf("%w: failed to lock date: %w", ErrInternal, err)
	}

	// 6. Лимит одновременных резерваций пользователя
	if existing == nil && !acting.IsPrivileged() {
		active, err := uc.repo.CountActiveByUser(ctx, acting.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to count active reservations: %w", ErrInternal, err)
		}
		if active >= uc.concurrencyLimit {
			return nil, reject(StageStructurallyValidated, ErrConcurrentLimitMet, "%d/%d active", active, uc.concurrencyLimit)
		}
	}

	if !acting.IsOperatorAdmin {
		// 7. Дневной лимит компании
		if !limit.Unlimited {
			reserved, err := uc.availability.ReservedMinutesOnDate(ctx, res.CompanyID, res.Date, excludeID)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to sum day: %w", ErrInternal, err)
			}
			if reserved+requirement > limit.Minutes(unit) {
				return nil, reject(StageStructurallyValidated, ErrDayCapacityMet,
					"company=%s, %d+%d > %d minutes", res.CompanyID, reserved, requirement, limit.Minutes(unit))
			}
		}

		// Сегодня доступны только еще не начавшиеся слоты
		if domain.IsSameDay(res.Date, now) {
			rest, err := uc.availability.MinutesScheduledForRestOfToday(ctx, now, excludeID)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to sum rest of today: %w", ErrInternal, err)
			}
			remaining := uc.catalog.RemainingSlotCapacityToday(now) * unit
			if rest+requirement > remaining {
				return nil, reject(StageStructurallyValidated, ErrDayCapacityMet,
					"rest of today %d+%d > %d minutes", rest, requirement, remaining)
			}
		}

		// 8. Вместимость слота, общая для всех компаний
		reserved, err := uc.availability.ReservedMinutesInSlot(ctx, res.StartTime, excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to sum slot: %w", ErrInternal, err)
		}
		if reserved+requirement > slot.CapacityMinutes(unit) {
			return nil, reject(StageStructurallyValidated, ErrSlotCapacityMet,
				"slot %02d-%02d, %d+%d > %d minutes", slot.StartHour, slot.EndHour, reserved, requirement, slot.CapacityMinutes(unit))
		}
	}

	// 9. Сохранение
	if existing == nil {
		created, err := uc.repo.Create(ctx, res)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}
		return &Response{Reservation: created, Created: true}, nil
	}

	updated, err := uc.repo.Update(ctx, res)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return nil, reject(StageCapacityChecked, ErrReservationNotFound, "id=%s", res.ID)
		}
		return nil, fmt.Errorf("%w: failed to update reservation: %w", ErrInternal, err)
	}
	return &Response{Reservation: updated}, nil
}

// normalize собирает резервацию из предложения.
// Незаданные поля наследуются от редактируемой резервации или получают значения по умолчанию.
func (uc *UseCase) normalize(req *Request, existing *domain.Reservation) (*domain.Reservation, *RejectionError) {
	loc := uc.catalog.Location()
	res := &domain.Reservation{
		UserID:             req.UserID,
		Services:           append([]domain.ServiceType(nil), req.Services...),
		StartTime:          req.StartTime.In(loc),
		VehiclePlateNumber: strings.ToUpper(strings.TrimSpace(req.VehiclePlateNumber)),
		Location:           strings.TrimSpace(req.Location),
		Comment:            req.Comment,
		CarwashComment:     req.CarwashComment,
		State:              domain.StateSubmittedNotActual,
		CreatedByID:        req.ActingUser.ID,
	}

	if existing != nil {
		res.ID = existing.ID
		res.State = existing.State
		res.CreatedByID = existing.CreatedByID
		res.CreatedAt = existing.CreatedAt
		res.Private = existing.Private
		if res.UserID == "" {
			res.UserID = existing.UserID
		}
		if res.CarwashComment == nil {
			res.CarwashComment = existing.CarwashComment
		}
	}
	if res.UserID == "" {
		res.UserID = req.ActingUser.ID
	}
	if req.Private != nil {
		res.Private = *req.Private
	}

	switch end := req.End.(type) {
	case ExplicitEnd:
		res.EndTime = end.At.In(loc)
	case DerivedEnd, nil:
		slot, err := uc.catalog.FindSlotByStartHour(res.StartTime.Hour())
		if err != nil {
			return nil, reject(StageProposed, ErrNotASlot, "no slot starts at %02d:00", res.StartTime.Hour())
		}
		res.EndTime = uc.catalog.SlotEnd(res.StartTime, slot)
	}

	res.Date = uc.catalog.DateOf(res.StartTime)
	return res, nil
}

func (uc *UseCase) observe(outcome, reason string) {
	if uc.metrics != nil {
		uc.metrics.ObserveAdmission(outcome, reason)
	}
}
