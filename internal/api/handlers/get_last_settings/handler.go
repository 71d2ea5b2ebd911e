package get_last_settings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashService/internal/service/reservations"
)

const (
	msgUnauthorized = "пользователь не определен"
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

// Handle GET /api/v1/reservations/lastsettings
// Без резерваций отвечает 204
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.service.GetLastSettings(r.Context(), acting)
	if err != nil {
		if errors.Is(err, reservations.ErrNoLastSettings) {
			handlers.RespondJSON(w, http.StatusNoContent, nil)
			return
		}
		h.logger.Error("GET /reservations/lastsettings - Failed to get last settings: user_id=%s, error=%v", acting.ID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
