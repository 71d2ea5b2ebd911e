package blockers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	blockerRepo "github.com/m04kA/SMC-CarWashService/internal/infra/storage/blocker"
	"github.com/m04kA/SMC-CarWashService/internal/service/blockers/models"
)

// Service сервис периодов закрытия мойки
type Service struct {
	repo      BlockerRepository
	txManager TransactionManager
	loc       *time.Location
	logger    Logger
}

// NewService создает новый экземпляр сервиса
func NewService(repo BlockerRepository, txManager TransactionManager, loc *time.Location, logger Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		loc:       loc,
		logger:    logger,
	}
}

// List все периоды закрытия
// Доступно администраторам компаний и сотрудникам мойки
func (s *Service) List(ctx context.Context, acting *domain.User) (*models.BlockerListResponse, error) {
	if !acting.IsPrivileged() {
		s.logger.Warn("List: access denied for user=%s", acting.ID)
		return nil, ErrAccessDenied
	}

	list, err := s.repo.List(ctx, nil, nil)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainBlockerList(list), nil
}

// Get период закрытия по ID
func (s *Service) Get(ctx context.Context, id string, acting *domain.User) (*models.BlockerResponse, error) {
	if !acting.IsPrivileged() {
		s.logger.Warn("Get: access denied for user=%s", acting.ID)
		return nil, ErrAccessDenied
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, blockerRepo.ErrBlockerNotFound) {
			return nil, ErrBlockerNotFound
		}
		s.logger.Error("Get: repository error for blocker id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Get - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainBlocker(b), nil
}

// Create создает период закрытия
// Доступно только сотрудникам мойки. Без окончания период длится до конца дня начала.
func (s *Service) Create(ctx context.Context, req *models.CreateBlockerRequest, acting *domain.User) (*models.BlockerResponse, error) {
	s.logger.Info("Create: creating blocker start=%s by user=%s", req.StartDate.Format(time.RFC3339), acting.ID)

	if !acting.IsOperatorAdmin {
		s.logger.Warn("Create: user=%s is not carwash staff", acting.ID)
		return nil, ErrAccessDenied
	}
	if req.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}

	b := &domain.Blocker{
		StartTime: req.StartDate.In(s.loc),
		Comment:   req.Comment,
	}
	if req.EndDate != nil {
		b.EndTime = req.EndDate.In(s.loc)
	} else {
		b.EndTime = domain.EndOfDay(b.StartTime)
	}

	if b.StartTime.After(b.EndTime) {
		return nil, fmt.Errorf("%w: start is after end", ErrInvalidRange)
	}
	if b.EndTime.After(b.StartTime.AddDate(0, domain.MaxBlockerSpanMonths, 0)) {
		return nil, fmt.Errorf("%w: longer than %d month", ErrInvalidRange, domain.MaxBlockerSpanMonths)
	}

	var created *domain.Blocker
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		existing, err := s.repo.List(ctx, &b.StartTime, &b.EndTime)
		if err != nil {
			return fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
		}
		for _, e := range existing {
			if e.Overlaps(b) {
				s.logger.Warn("Create: blocker overlaps id=%s", e.ID)
				return ErrOverlap
			}
		}

		created, err = s.repo.Create(ctx, b)
		if err != nil {
			return fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("Create: %v", err)
		}
		return nil, err
	}

	s.logger.Info("Create: created blocker id=%s, %s - %s", created.ID,
		created.StartTime.Format(time.RFC3339), created.EndTime.Format(time.RFC3339))
	return models.FromDomainBlocker(created), nil
}

// Delete удаляет период закрытия
// Доступно только сотрудникам мойки
func (s *Service) Delete(ctx context.Context, id string, acting *domain.User) error {
	s.logger.Info("Delete: deleting blocker id=%s by user=%s", id, acting.ID)

	if !acting.IsOperatorAdmin {
		s.logger.Warn("Delete: user=%s is not carwash staff", acting.ID)
		return ErrAccessDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, blockerRepo.ErrBlockerNotFound) {
			return ErrBlockerNotFound
		}
		s.logger.Error("Delete: repository error for blocker id=%s: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
	}

	return nil
}
