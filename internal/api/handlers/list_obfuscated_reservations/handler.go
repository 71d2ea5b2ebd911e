package list_obfuscated_reservations

import (
	"net/http"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
)

const (
	msgInvalidDaysAhead = "некорректный параметр daysAhead"
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

// Handle GET /api/v1/reservations/obfuscated
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	daysAhead, err := handlers.QueryDaysAhead(r)
	if err != nil {
		h.logger.Warn("GET /reservations/obfuscated - Invalid daysAhead: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDaysAhead)
		return
	}

	result, err := h.service.ListObfuscated(r.Context(), daysAhead)
	if err != nil {
		h.logger.Error("GET /reservations/obfuscated - Failed to list reservations: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Reservations)
}
