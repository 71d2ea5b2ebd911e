package admit_reservation

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashService/internal/service/reservations/models"
	admitReservation "github.com/m04kA/SMC-CarWashService/internal/usecase/admit_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgIDMismatch         = "ID в пути и в теле запроса не совпадают"
	msgUnauthorized       = "пользователь не определен"
	msgConflict           = "слот одновременно бронируют другие пользователи, повторите попытку"
)

// Тексты отказов по причинам
var rejectionMessages = map[error]string{
	admitReservation.ErrNoServiceSelected:   "не выбрана ни одна услуга",
	admitReservation.ErrInvalidInput:        "некорректные данные резервации",
	admitReservation.ErrCrossDayRange:       "начало и окончание резервации должны быть в один день",
	admitReservation.ErrPastDate:            "нельзя забронировать время в прошлом",
	admitReservation.ErrNotASlot:            "бронировать можно только целые слоты",
	admitReservation.ErrBlocked:             "мойка закрыта в это время",
	admitReservation.ErrForbidden:           "доступ запрещен",
	admitReservation.ErrOwnerChange:         "владельца резервации изменить нельзя",
	admitReservation.ErrUserNotFound:        "пользователь не найден",
	admitReservation.ErrUnknownCompany:      "для компании не настроен лимит",
	admitReservation.ErrReservationNotFound: "резервация не найдена",
	admitReservation.ErrConcurrentLimitMet:  "достигнут лимит одновременных резерваций",
	admitReservation.ErrDayCapacityMet:      "дневной лимит компании исчерпан или на сегодня не осталось времени",
	admitReservation.ErrSlotCapacityMet:     "в этом слоте недостаточно времени",
	admitReservation.ErrConflict:            msgConflict,
}

type Handler struct {
	useCase AdmitReservationUseCase
	logger  Logger
}

func NewHandler(useCase AdmitReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// HandleCreate POST /api/v1/reservations
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "")
}

// HandleUpdate PUT /api/v1/reservations/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, mux.Vars(r)["id"])
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, reservationID string) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req ReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s %s - Invalid request body: %v", r.Method, r.URL.Path, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if reservationID != "" && req.ID != "" && req.ID != reservationID {
		h.logger.Warn("PUT /reservations/{id} - ID mismatch: path=%s, body=%s", reservationID, req.ID)
		handlers.RespondBadRequest(w, msgIDMismatch)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(acting, reservationID))
	if err != nil {
		var rejection *admitReservation.RejectionError
		if !errors.As(err, &rejection) {
			h.logger.Error("%s %s - Failed to admit reservation: user_id=%s, error=%v", r.Method, r.URL.Path, acting.ID, err)
			handlers.RespondInternalError(w)
			return
		}

		h.logger.Warn("%s %s - Reservation rejected: user_id=%s, reason=%s", r.Method, r.URL.Path, acting.ID, rejection.Code())
		message, ok := rejectionMessages[rejection.Reason]
		if !ok {
			message = rejection.Error()
		}
		handlers.RespondErrorCode(w, StatusFor(rejection), rejection.Code(), message)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	h.logger.Info("%s %s - Reservation admitted: reservation_id=%s, user_id=%s",
		r.Method, r.URL.Path, result.Reservation.ID, acting.ID)
	handlers.RespondJSON(w, status, models.FromDomainReservation(result.Reservation))
}

// StatusFor HTTP статус отказа по его категории
func StatusFor(err error) int {
	switch {
	case errors.Is(err, admitReservation.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, admitReservation.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, admitReservation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, admitReservation.ErrCapacity), errors.Is(err, admitReservation.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
