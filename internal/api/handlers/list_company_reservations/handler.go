package list_company_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashService/internal/service/reservations"
)

const (
	msgUnauthorized = "пользователь не определен"
	msgForbidden    = "доступно только администраторам компании"
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

// Handle GET /api/v1/reservations/company
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.service.ListCompany(r.Context(), acting)
	if err != nil {
		if errors.Is(err, reservations.ErrAccessDenied) {
			h.logger.Warn("GET /reservations/company - Access denied: user_id=%s", acting.ID)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		h.logger.Error("GET /reservations/company - Failed to list reservations: company=%s, error=%v", acting.CompanyID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /reservations/company - Reservations retrieved: company=%s, count=%d",
		acting.CompanyID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result.Reservations)
}
