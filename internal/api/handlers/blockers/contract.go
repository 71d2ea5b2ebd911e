package blockers

import (
	"context"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/blockers/models"
)

type BlockerService interface {
	List(ctx context.Context, acting *domain.User) (*models.BlockerListResponse, error)
	Get(ctx context.Context, id string, acting *domain.User) (*models.BlockerResponse, error)
	Create(ctx context.Context, req *models.CreateBlockerRequest, acting *domain.User) (*models.BlockerResponse, error)
	Delete(ctx context.Context, id string, acting *domain.User) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
