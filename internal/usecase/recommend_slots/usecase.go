package recommend_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

// UseCase подбирает до трех свободных слотов без побочных эффектов
type UseCase struct {
	availability AvailabilitySource
	catalog      SlotCatalog
	daysAhead    int
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(availability AvailabilitySource, catalog SlotCatalog, daysAhead int, logger Logger) *UseCase {
	if daysAhead <= 0 {
		daysAhead = domain.DefaultDaysAhead
	}
	return &UseCase{
		availability: availability,
		catalog:      catalog,
		daysAhead:    daysAhead,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute возвращает рекомендованные слоты.
// Кандидат, для которого не нашлось свободного слота, пропускается и только логируется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.ActingUser == nil || req.DaysAhead < 0 || req.DaysAhead > domain.MaxDaysAhead {
		return nil, ErrInvalidInput
	}
	daysAhead := req.DaysAhead
	if daysAhead == 0 {
		daysAhead = uc.daysAhead
	}

	now := uc.timeProvider.Now().In(uc.catalog.Location())
	uc.logger.Info("RecommendSlots: user=%s, company=%s, daysAhead=%d", req.ActingUser.ID, req.ActingUser.CompanyID, daysAhead)

	snapshot, err := uc.availability.Snapshot(ctx, req.ActingUser.CompanyID, now, daysAhead)
	if err != nil {
		if errors.Is(err, availability.ErrCompanyNotFound) {
			uc.logger.Warn("RecommendSlots: company %q not found", req.ActingUser.CompanyID)
			return nil, ErrCompanyNotFound
		}
		uc.logger.Error("RecommendSlots: failed to get availability: %v", err)
		return nil, fmt.Errorf("%w: failed to get availability: %w", ErrInternal, err)
	}

	f := newFinder(uc.catalog, snapshot, now, daysAhead)
	today := uc.catalog.DateOf(now)

	candidates := make([]time.Time, 0, domain.RecommendedSlotsMaxCount)
	seen := make(map[int64]bool)
	add := func(name string, slot time.Time, err error) {
		if err != nil {
			uc.logger.Warn("RecommendSlots: no %s candidate: %v", name, err)
			return
		}
		if seen[slot.Unix()] {
			return
		}
		seen[slot.Unix()] = true
		candidates = append(candidates, slot)
	}

	// 1. Сегодня, если день рабочий и не закрыт
	if f.dateOpen(today) {
		slot, err := f.openSlot(today)
		add("today", slot, err)
	}

	// 2. Ближайший доступный рабочий день после сегодня
	if date, err := f.nextOpenDate(today.AddDate(0, 0, 1)); err != nil {
		add("next day", time.Time{}, err)
	} else {
		slot, err := f.openSlot(date)
		add("next day", slot, err)
	}

	// 3. Следующая неделя: понедельник или позже
	if date, err := f.nextOpenDate(nextMonday(today)); err != nil {
		add("next week", time.Time{}, err)
	} else {
		slot, err := f.openSlot(date)
		add("next week", slot, err)
	}

	uc.logger.Info("RecommendSlots: found %d slots for user=%s", len(candidates), req.ActingUser.ID)
	return &Response{Slots: candidates}, nil
}

// nextMonday первый понедельник строго после date
func nextMonday(date time.Time) time.Time {
	d := date.AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
