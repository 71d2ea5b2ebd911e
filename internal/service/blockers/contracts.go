package blockers

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// BlockerRepository интерфейс репозитория периодов закрытия
type BlockerRepository interface {
	Create(ctx context.Context, b *domain.Blocker) (*domain.Blocker, error)
	GetByID(ctx context.Context, id string) (*domain.Blocker, error)
	List(ctx context.Context, from, to *time.Time) ([]*domain.Blocker, error)
	Delete(ctx context.Context, id string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
