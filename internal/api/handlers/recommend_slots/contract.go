package recommend_slots

import (
	"context"

	recommendSlots "github.com/m04kA/SMC-CarWashService/internal/usecase/recommend_slots"
)

type RecommendSlotsUseCase interface {
	Execute(ctx context.Context, req *recommendSlots.Request) (*recommendSlots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
