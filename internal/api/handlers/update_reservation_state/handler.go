package update_reservation_state

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/reservations"
)

const (
	msgUnauthorized       = "пользователь не определен"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidState       = "недопустимое состояние резервации"
	msgNotFound           = "резервация не найдена"
	msgForbidden          = "доступно только сотрудникам мойки"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{id}/state
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	var req UpdateStateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || req.State == nil {
		h.logger.Warn("PATCH /reservations/{id}/state - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.UpdateState(r.Context(), id, domain.State(*req.State), acting); err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidState):
			handlers.RespondBadRequest(w, msgInvalidState)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/state - Access denied: id=%s, user_id=%s", id, acting.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("PATCH /reservations/{id}/state - Failed to update state: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/state - State updated: id=%s, state=%d", id, *req.State)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
