package delete_reservation

import (
	"context"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

type ReservationService interface {
	Delete(ctx context.Context, id string, acting *domain.User) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
