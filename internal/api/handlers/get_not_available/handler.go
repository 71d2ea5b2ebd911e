package get_not_available

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

const (
	msgUnauthorized     = "пользователь не определен"
	msgInvalidDaysAhead = "некорректный параметр daysAhead"
	msgCompanyNotFound  = "для компании пользователя не настроен лимит"
)

type Handler struct {
	calculator AvailabilityCalculator
	logger     Logger
}

func NewHandler(calculator AvailabilityCalculator, logger Logger) *Handler {
	return &Handler{
		calculator: calculator,
		logger:     logger,
	}
}

// Handle GET /api/v1/reservations/notavailable
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	daysAhead, err := handlers.QueryDaysAhead(r)
	if err != nil {
		h.logger.Warn("GET /reservations/notavailable - Invalid daysAhead: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDaysAhead)
		return
	}

	snapshot, err := h.calculator.Snapshot(r.Context(), acting.CompanyID, h.calculator.Now(), daysAhead)
	if err != nil {
		if errors.Is(err, availability.ErrCompanyNotFound) {
			h.logger.Warn("GET /reservations/notavailable - Company not found: company=%s", acting.CompanyID)
			handlers.RespondNotFound(w, msgCompanyNotFound)
			return
		}
		h.logger.Error("GET /reservations/notavailable - Failed to compute availability: company=%s, error=%v", acting.CompanyID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromSnapshot(snapshot))
}
