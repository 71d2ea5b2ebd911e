package list_company_reservations

import (
	"context"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/reservations/models"
)

type ReservationService interface {
	ListCompany(ctx context.Context, acting *domain.User) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
