package update_reservation_state

import (
	"context"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

type ReservationService interface {
	UpdateState(ctx context.Context, id string, state domain.State, acting *domain.User) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
