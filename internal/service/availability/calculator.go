package availability

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/catalog"
)

// Calculator считает занятость дней и слотов по текущим резервациям.
// Ничего не кэширует: каждое значение вычисляется по хранилищу в момент вызова.
type Calculator struct {
	repo         ReservationAggregates
	blockers     BlockerReader
	catalog      SlotCatalog
	timeProvider TimeProvider
	logger       Logger
}

// NewCalculator создает новый экземпляр калькулятора
func NewCalculator(repo ReservationAggregates, blockers BlockerReader, catalog SlotCatalog, logger Logger) *Calculator {
	return &Calculator{
		repo:         repo,
		blockers:     blockers,
		catalog:      catalog,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (c *Calculator) WithTimeProvider(tp TimeProvider) *Calculator {
	c.timeProvider = tp
	return c
}

// Now текущее время в часовом поясе каталога
func (c *Calculator) Now() time.Time {
	return c.timeProvider.Now().In(c.catalog.Location())
}

// NotAvailableDates даты в горизонте daysAhead, на которые компания уже не может бронировать
func (c *Calculator) NotAvailableDates(ctx context.Context, companyID string, asOf time.Time, daysAhead int) ([]time.Time, error) {
	asOf = asOf.In(c.catalog.Location())
	horizon := c.horizon(asOf, daysAhead)
	unit := c.catalog.UnitMinutes()

	limit, err := c.catalog.DailyLimitFor(companyID)
	if err != nil {
		if errors.Is(err, catalog.ErrCompanyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
		}
		return nil, fmt.Errorf("%w: daily limit: %w", ErrInternal, err)
	}

	dates := make(timeSet)

	// 1. Дни, в которых исчерпан дневной лимит компании
	if !limit.Unlimited {
		totals, err := c.repo.SumByDate(ctx, domain.ReservationFilter{
			CompanyID: &companyID,
			EndFrom:   &asOf,
			StartTo:   &horizon,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: sum by date: %w", ErrInternal, err)
		}
		for _, t := range totals {
			if t.Minutes >= limit.Minutes(unit) {
				dates.add(c.catalog.DateOf(t.Date))
			}
		}
	}

	// 2. Сегодня, если оставшихся слотов не хватает на уже запланированное
	rest, err := c.MinutesScheduledForRestOfToday(ctx, asOf, nil)
	if err != nil {
		return nil, err
	}
	if rest >= c.catalog.RemainingSlotCapacityToday(asOf)*unit {
		dates.add(c.catalog.DateOf(asOf))
	}

	// 3. Дни, все слоты которых закрыты блокировками
	blocked, err := c.blockedSlotStarts(ctx, asOf, horizon)
	if err != nil {
		return nil, err
	}
	perDay := make(map[int64]int)
	for _, start := range blocked {
		perDay[c.catalog.DateOf(start).Unix()]++
	}
	slotsPerDay := len(c.catalog.Slots())
	for _, start := range blocked {
		day := c.catalog.DateOf(start)
		if perDay[day.Unix()] >= slotsPerDay {
			dates.add(day)
		}
	}

	return dates.sorted(), nil
}

// NotAvailableTimes моменты начала слотов в горизонте daysAhead, вместимость которых исчерпана.
// Вместимость слота общая для всех компаний.
func (c *Calculator) NotAvailableTimes(ctx context.Context, asOf time.Time, daysAhead int) ([]time.Time, error) {
	asOf = asOf.In(c.catalog.Location())
	horizon := c.horizon(asOf, daysAhead)
	unit := c.catalog.UnitMinutes()

	totals, err := c.repo.SumByStartTime(ctx, domain.ReservationFilter{
		EndFrom: &asOf,
		StartTo: &horizon,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sum by start time: %w", ErrInternal, err)
	}

	times := make(timeSet)
	for _, t := range totals {
		slot, ok := c.slotOf(t.StartTime)
		if !ok {
			continue
		}
		if t.Minutes >= slot.CapacityMinutes(unit) {
			times.add(t.StartTime.In(c.catalog.Location()))
		}
	}

	blocked, err := c.blockedSlotStarts(ctx, asOf, horizon)
	if err != nil {
		return nil, err
	}
	for _, start := range blocked {
		times.add(start)
	}

	return times.sorted(), nil
}

// SlotFillPercentage заполненность каждого слота указанного дня.
// Значение ограничено сверху единицей и округлено до сотых.
func (c *Calculator) SlotFillPercentage(ctx context.Context, date time.Time) ([]SlotFill, error) {
	day := c.catalog.DateOf(date)
	unit := c.catalog.UnitMinutes()

	totals, err := c.repo.SumByStartTime(ctx, domain.ReservationFilter{Date: &day})
	if err != nil {
		return nil, fmt.Errorf("%w: sum by start time: %w", ErrInternal, err)
	}

	byHour := make(map[int]int, len(totals))
	for _, t := range totals {
		start := t.StartTime.In(c.catalog.Location())
		if start.Minute() != 0 || start.Second() != 0 {
			continue
		}
		byHour[start.Hour()] += t.Minutes
	}

	slots := c.catalog.Slots()
	fills := make([]SlotFill, 0, len(slots))
	for _, slot := range slots {
		sum := byHour[slot.StartHour]
		fills = append(fills, SlotFill{
			StartTime:  c.catalog.SlotStart(day, slot),
			Percentage: fillRatio(sum, slot.CapacityMinutes(unit)),
		})
	}

	return fills, nil
}

// Snapshot недоступные даты и слоты, вычисленные параллельно
func (c *Calculator) Snapshot(ctx context.Context, companyID string, asOf time.Time, daysAhead int) (*Snapshot, error) {
	var snapshot Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dates, err := c.NotAvailableDates(gctx, companyID, asOf, daysAhead)
		if err != nil {
			return err
		}
		snapshot.Dates = dates
		return nil
	})
	g.Go(func() error {
		times, err := c.NotAvailableTimes(gctx, asOf, daysAhead)
		if err != nil {
			return err
		}
		snapshot.Times = times
		return nil
	})

	if err := g.Wait(); err != nil {
		c.logger.Error("Availability: snapshot for company=%s failed: %v", companyID, err)
		return nil, err
	}

	return &snapshot, nil
}

// ReservedMinutesOnDate время резерваций компании на календарный день
func (c *Calculator) ReservedMinutesOnDate(ctx context.Context, companyID string, date time.Time, excludeID *string) (int, error) {
	day := c.catalog.DateOf(date)
	sum, err := c.repo.SumTimeRequirement(ctx, domain.ReservationFilter{
		CompanyID: &companyID,
		Date:      &day,
		ExcludeID: excludeID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: reserved minutes on date: %w", ErrInternal, err)
	}
	return sum, nil
}

// ReservedMinutesInSlot время резерваций всех компаний в слоте с началом start
func (c *Calculator) ReservedMinutesInSlot(ctx context.Context, start time.Time, excludeID *string) (int, error) {
	sum, err := c.repo.SumTimeRequirement(ctx, domain.ReservationFilter{
		StartTime: &start,
		ExcludeID: excludeID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: reserved minutes in slot: %w", ErrInternal, err)
	}
	return sum, nil
}

// MinutesScheduledForRestOfToday время резерваций всех компаний,
// которые начинаются сегодня не раньше asOf
func (c *Calculator) MinutesScheduledForRestOfToday(ctx context.Context, asOf time.Time, excludeID *string) (int, error) {
	today := c.catalog.DateOf(asOf)
	sum, err := c.repo.SumTimeRequirement(ctx, domain.ReservationFilter{
		Date:      &today,
		StartFrom: &asOf,
		ExcludeID: excludeID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: rest of today: %w", ErrInternal, err)
	}
	return sum, nil
}

// IsBlocked возвращает true, если момент попадает в период закрытия
func (c *Calculator) IsBlocked(ctx context.Context, t time.Time) (bool, error) {
	blockers, err := c.blockers.List(ctx, &t, &t)
	if err != nil {
		return false, fmt.Errorf("%w: list blockers: %w", ErrInternal, err)
	}
	for _, b := range blockers {
		if b.Covers(t) {
			return true, nil
		}
	}
	return false, nil
}

// blockedSlotStarts моменты начала слотов в [from, to], закрытые блокировками
func (c *Calculator) blockedSlotStarts(ctx context.Context, from, to time.Time) (timeSet, error) {
	blockers, err := c.blockers.List(ctx, &from, &to)
	if err != nil {
		return nil, fmt.Errorf("%w: list blockers: %w", ErrInternal, err)
	}

	out := make(timeSet)
	slots := c.catalog.Slots()
	for _, b := range blockers {
		first := c.catalog.DateOf(maxTime(b.StartTime, from))
		last := c.catalog.DateOf(minTime(b.EndTime, to))
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			for _, slot := range slots {
				start := c.catalog.SlotStart(day, slot)
				if b.Covers(start) {
					out.add(start)
				}
			}
		}
	}

	return out, nil
}

func (c *Calculator) slotOf(start time.Time) (domain.Slot, bool) {
	local := start.In(c.catalog.Location())
	if local.Minute() != 0 || local.Second() != 0 {
		return domain.Slot{}, false
	}
	slot, err := c.catalog.FindSlotByStartHour(local.Hour())
	if err != nil {
		return domain.Slot{}, false
	}
	return slot, true
}

func (c *Calculator) horizon(asOf time.Time, daysAhead int) time.Time {
	if daysAhead <= 0 {
		daysAhead = domain.DefaultDaysAhead
	}
	return asOf.AddDate(0, 0, daysAhead)
}

func fillRatio(sum, capacity int) float64 {
	if sum == 0 || capacity <= 0 {
		return 0
	}
	ratio := math.Min(1, float64(sum)/float64(capacity))
	return math.Round(ratio*100) / 100
}

// timeSet множество моментов времени, ключ по Unix секундам
type timeSet map[int64]time.Time

func (s timeSet) add(t time.Time) {
	s[t.Unix()] = t
}

func (s timeSet) sorted() []time.Time {
	out := make([]time.Time, 0, len(s))
	for _, t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
