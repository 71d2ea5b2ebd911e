package recommend_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	recommendSlots "github.com/m04kA/SMC-CarWashService/internal/usecase/recommend_slots"
)

const (
	msgUnauthorized     = "пользователь не определен"
	msgInvalidDaysAhead = "некорректный параметр daysAhead"
	msgCompanyNotFound  = "для компании пользователя не настроен лимит"
)

type Handler struct {
	useCase RecommendSlotsUseCase
	logger  Logger
}

func NewHandler(useCase RecommendSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/reservations/recommended
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	daysAhead, err := handlers.QueryDaysAhead(r)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDaysAhead)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &recommendSlots.Request{ActingUser: acting, DaysAhead: daysAhead})
	if err != nil {
		switch {
		case errors.Is(err, recommendSlots.ErrCompanyNotFound):
			handlers.RespondNotFound(w, msgCompanyNotFound)
		case errors.Is(err, recommendSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDaysAhead)
		default:
			h.logger.Error("GET /reservations/recommended - Failed to recommend slots: user_id=%s, error=%v", acting.ID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Slots)
}
