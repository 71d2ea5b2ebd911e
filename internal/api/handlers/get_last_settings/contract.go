package get_last_settings

import (
	"context"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/reservations/models"
)

type ReservationService interface {
	GetLastSettings(ctx context.Context, acting *domain.User) (*models.LastSettingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
