package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-CarWashService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-CarWashService/internal/service/reservations/models"
)

// Service сервис чтения, отмены и смены состояния резерваций
type Service struct {
	repo      ReservationRepository
	txManager TransactionManager
	now       func() time.Time
	logger    Logger
}

// NewService создает новый экземпляр сервиса резерваций
func NewService(repo ReservationRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		now:       time.Now,
		logger:    logger,
	}
}

// GetByID получает резервацию по ID
// Владелец видит свою резервацию, администраторы и сотрудники мойки видят любую
func (s *Service) GetByID(ctx context.Context, id string, acting *domain.User) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%s for user=%s", id, acting.ID)

	res, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !acting.CanActFor(res.UserID) {
		s.logger.Warn("GetByID: access denied for user=%s to reservation id=%s", acting.ID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainReservation(res), nil
}

// ListByUser резервации действующего пользователя, новые первыми
func (s *Service) ListByUser(ctx context.Context, acting *domain.User) (*models.ReservationListResponse, error) {
	s.logger.Info("ListByUser: fetching reservations for user=%s", acting.ID)

	list, err := s.repo.List(ctx, domain.ReservationFilter{UserID: &acting.ID})
	if err != nil {
		s.logger.Error("ListByUser: repository error for user=%s: %v", acting.ID, err)
		return nil, fmt.Errorf("%w: ListByUser - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListByUser: fetched %d reservations for user=%s", len(list), acting.ID)
	return models.FromDomainReservationList(list), nil
}

// ListCompany резервации других пользователей компании администратора
func (s *Service) ListCompany(ctx context.Context, acting *domain.User) (*models.ReservationListResponse, error) {
	s.logger.Info("ListCompany: fetching reservations of company=%s for user=%s", acting.CompanyID, acting.ID)

	if !acting.IsAdmin {
		s.logger.Warn("ListCompany: user=%s is not a company admin", acting.ID)
		return nil, ErrAccessDenied
	}

	list, err := s.repo.List(ctx, domain.ReservationFilter{CompanyID: &acting.CompanyID})
	if err != nil {
		s.logger.Error("ListCompany: repository error for company=%s: %v", acting.CompanyID, err)
		return nil, fmt.Errorf("%w: ListCompany - repository error: %w", ErrInternal, err)
	}

	others := make([]*domain.Reservation, 0, len(list))
	for _, r := range list {
		if r.UserID != acting.ID {
			others = append(others, r)
		}
	}

	s.logger.Info("ListCompany: fetched %d reservations for company=%s", len(others), acting.CompanyID)
	return models.FromDomainReservationList(others), nil
}

// ListObfuscated будущие резервации всех компаний без данных пользователей
func (s *Service) ListObfuscated(ctx context.Context, daysAhead int) (*models.ObfuscatedListResponse, error) {
	if daysAhead < 0 || daysAhead > domain.MaxDaysAhead {
		return nil, fmt.Errorf("%w: daysAhead must be between 0 and %d", ErrInvalidInput, domain.MaxDaysAhead)
	}
	if daysAhead == 0 {
		daysAhead = domain.DefaultDaysAhead
	}

	now := s.now()
	horizon := now.AddDate(0, 0, daysAhead)
	list, err := s.repo.List(ctx, domain.ReservationFilter{EndFrom: &now, StartTo: &horizon})
	if err != nil {
		s.logger.Error("ListObfuscated: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListObfuscated - repository error: %w", ErrInternal, err)
	}

	// Хранилище отдает новые первыми, здесь нужен хронологический порядок
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}

	return models.FromDomainObfuscatedList(list), nil
}

// Delete отменяет резервацию и освобождает её время в слоте
func (s *Service) Delete(ctx context.Context, id string, acting *domain.User) error {
	s.logger.Info("Delete: deleting reservation id=%s by user=%s", id, acting.ID)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		res, err := s.get(ctx, "Delete", id)
		if err != nil {
			return err
		}

		if !acting.CanActFor(res.UserID) {
			s.logger.Warn("Delete: access denied for user=%s to reservation id=%s", acting.ID, id)
			return ErrAccessDenied
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			s.logger.Error("Delete: repository error for reservation id=%s: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Delete: successfully deleted reservation id=%s", id)
	return nil
}

// UpdateState меняет состояние резервации
// Доступно только сотрудникам мойки
func (s *Service) UpdateState(ctx context.Context, id string, state domain.State, acting *domain.User) error {
	s.logger.Info("UpdateState: updating reservation id=%s to state=%d by user=%s", id, state, acting.ID)

	if !acting.IsOperatorAdmin {
		s.logger.Warn("UpdateState: user=%s is not carwash staff", acting.ID)
		return ErrAccessDenied
	}
	if !state.IsValid() {
		s.logger.Warn("UpdateState: invalid state=%d for reservation id=%s", state, id)
		return ErrInvalidState
	}

	if err := s.repo.UpdateState(ctx, id, state); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("UpdateState: reservation id=%s not found", id)
			return ErrReservationNotFound
		}
		s.logger.Error("UpdateState: repository error for reservation id=%s: %v", id, err)
		return fmt.Errorf("%w: UpdateState - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("UpdateState: successfully updated reservation id=%s to state=%d", id, state)
	return nil
}

// GetLastSettings номер машины и место парковки из последней резервации пользователя
func (s *Service) GetLastSettings(ctx context.Context, acting *domain.User) (*models.LastSettingsResponse, error) {
	res, err := s.repo.GetLatestByUser(ctx, acting.ID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return nil, ErrNoLastSettings
		}
		s.logger.Error("GetLastSettings: repository error for user=%s: %v", acting.ID, err)
		return nil, fmt.Errorf("%w: GetLastSettings - repository error: %w", ErrInternal, err)
	}

	return &models.LastSettingsResponse{
		VehiclePlateNumber: res.VehiclePlateNumber,
		Location:           res.Location,
	}, nil
}

func (s *Service) get(ctx context.Context, op, id string) (*domain.Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%s not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return res, nil
}
