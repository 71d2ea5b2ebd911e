package list_obfuscated_reservations

import (
	"context"

	"github.com/m04kA/SMC-CarWashService/internal/service/reservations/models"
)

type ReservationService interface {
	ListObfuscated(ctx context.Context, daysAhead int) (*models.ObfuscatedListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
