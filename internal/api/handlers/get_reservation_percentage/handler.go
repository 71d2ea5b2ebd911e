package get_reservation_percentage

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

const (
	msgInvalidDate = "некорректная дата, ожидается YYYY-MM-DD"
)

type Handler struct {
	calculator AvailabilityCalculator
	location   *time.Location
	logger     Logger
}

func NewHandler(calculator AvailabilityCalculator, location *time.Location, logger Logger) *Handler {
	return &Handler{
		calculator: calculator,
		location:   location,
		logger:     logger,
	}
}

// Handle GET /api/v1/reservations/percentage?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	date, err := time.ParseInLocation(domain.DateFormat, r.URL.Query().Get("date"), h.location)
	if err != nil {
		h.logger.Warn("GET /reservations/percentage - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	fills, err := h.calculator.SlotFillPercentage(r.Context(), date)
	if err != nil {
		h.logger.Error("GET /reservations/percentage - Failed to compute fill: date=%s, error=%v", date.Format(domain.DateFormat), err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromSlotFills(fills))
}
