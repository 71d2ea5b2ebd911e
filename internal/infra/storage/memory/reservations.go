// Package memory хранилище в памяти процесса.
// Используется драйвером "memory" и в тестах вместо PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/infra/storage/reservation"
)

// ReservationStore хранилище резерваций в памяти
type ReservationStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Reservation
	loc   *time.Location
	now   func() time.Time
}

// NewReservationStore создает пустое хранилище
func NewReservationStore(loc *time.Location) *ReservationStore {
	if loc == nil {
		loc = time.Local
	}
	return &ReservationStore{
		items: make(map[string]*domain.Reservation),
		loc:   loc,
		now:   time.Now,
	}
}

// WithClock подменяет источник времени для created_at и updated_at
func (s *ReservationStore) WithClock(now func() time.Time) *ReservationStore {
	s.now = now
	return s
}

// Create сохраняет новую резервацию
func (s *ReservationStore) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := s.now()
	res.CreatedAt = now
	res.UpdatedAt = now

	s.items[res.ID] = clone(res)
	return res, nil
}

// Update перезаписывает резервацию
func (s *ReservationStore) Update(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[res.ID]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	res.CreatedAt = existing.CreatedAt
	res.UpdatedAt = s.now()

	s.items[res.ID] = clone(res)
	return res, nil
}

// UpdateState меняет состояние резервации
func (s *ReservationStore) UpdateState(_ context.Context, id string, state domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[id]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	existing.State = state
	existing.UpdatedAt = s.now()
	return nil
}

// GetByID получает резервацию по ID
func (s *ReservationStore) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.items[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return clone(res), nil
}

// GetLatestByUser получает самую новую резервацию пользователя
func (s *ReservationStore) GetLatestByUser(_ context.Context, userID string) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Reservation
	for _, res := range s.items {
		if res.UserID != userID {
			continue
		}
		if latest == nil || res.CreatedAt.After(latest.CreatedAt) {
			latest = res
		}
	}
	if latest == nil {
		return nil, reservation.ErrReservationNotFound
	}
	return clone(latest), nil
}

// List получает резервации по фильтру, новые первыми
func (s *ReservationStore) List(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Reservation, 0)
	for _, res := range s.items {
		if s.matches(res, filter) {
			out = append(out, clone(res))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

// Delete удаляет резервацию
func (s *ReservationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return reservation.ErrReservationNotFound
	}
	delete(s.items, id)
	return nil
}

// CountActiveByUser считает невыполненные резервации пользователя
func (s *ReservationStore) CountActiveByUser(_ context.Context, userID string, excludeID *string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, res := range s.items {
		if res.UserID != userID || !res.IsActive() {
			continue
		}
		if excludeID != nil && res.ID == *excludeID {
			continue
		}
		count++
	}
	return count, nil
}

// SumTimeRequirement суммирует время резерваций по фильтру
func (s *ReservationStore) SumTimeRequirement(_ context.Context, filter domain.ReservationFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := 0
	for _, res := range s.items {
		if s.matches(res, filter) {
			sum += res.TimeRequirementMinutes
		}
	}
	return sum, nil
}

// SumByDate суммирует время резерваций по календарным дням
func (s *ReservationStore) SumByDate(_ context.Context, filter domain.ReservationFilter) ([]domain.DateTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDate := make(map[string]*domain.DateTotal)
	for _, res := range s.items {
		if !s.matches(res, filter) {
			continue
		}
		date := s.dateOf(res)
		key := date.Format(domain.DateFormat)
		total, ok := byDate[key]
		if !ok {
			total = &domain.DateTotal{Date: date}
			byDate[key] = total
		}
		total.Minutes += res.TimeRequirementMinutes
	}

	out := make([]domain.DateTotal, 0, len(byDate))
	for _, total := range byDate {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// SumByStartTime суммирует время резерваций по моментам начала слотов
func (s *ReservationStore) SumByStartTime(_ context.Context, filter domain.ReservationFilter) ([]domain.StartTimeTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byStart := make(map[int64]*domain.StartTimeTotal)
	for _, res := range s.items {
		if !s.matches(res, filter) {
			continue
		}
		key := res.StartTime.Unix()
		total, ok := byStart[key]
		if !ok {
			total = &domain.StartTimeTotal{StartTime: res.StartTime.In(s.loc)}
			byStart[key] = total
		}
		total.Minutes += res.TimeRequirementMinutes
	}

	out := make([]domain.StartTimeTotal, 0, len(byStart))
	for _, total := range byStart {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// LockDate не требуется: TxManager сериализует транзакции целиком
func (s *ReservationStore) LockDate(context.Context, time.Time) error {
	return nil
}

func (s *ReservationStore) matches(res *domain.Reservation, f domain.ReservationFilter) bool {
	if f.CompanyID != nil && res.CompanyID != *f.CompanyID {
		return false
	}
	if f.UserID != nil && res.UserID != *f.UserID {
		return false
	}
	if f.Date != nil && !s.dateOf(res).Equal(domain.DateOf(f.Date.In(s.loc))) {
		return false
	}
	if f.StartTime != nil && !res.StartTime.Equal(*f.StartTime) {
		return false
	}
	if f.StartFrom != nil && res.StartTime.Before(*f.StartFrom) {
		return false
	}
	if f.StartTo != nil && res.StartTime.After(*f.StartTo) {
		return false
	}
	if f.EndFrom != nil && res.EndTime.Before(*f.EndFrom) {
		return false
	}
	if f.ExcludeID != nil && res.ID == *f.ExcludeID {
		return false
	}
	return true
}

func (s *ReservationStore) dateOf(res *domain.Reservation) time.Time {
	if !res.Date.IsZero() {
		return domain.DateOf(res.Date.In(s.loc))
	}
	return domain.DateOf(res.StartTime.In(s.loc))
}

func clone(res *domain.Reservation) *domain.Reservation {
	c := *res
	c.Services = append([]domain.ServiceType(nil), res.Services...)
	return &c
}
