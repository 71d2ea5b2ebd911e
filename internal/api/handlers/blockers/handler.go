package blockers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	blockerService "github.com/m04kA/SMC-CarWashService/internal/service/blockers"
	"github.com/m04kA/SMC-CarWashService/internal/service/blockers/models"
)

const (
	msgUnauthorized       = "пользователь не определен"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgForbidden          = "доступ запрещен"
	msgNotFound           = "период закрытия не найден"
	msgInvalidRange       = "начало позже окончания или период длиннее месяца"
	msgOverlap            = "период пересекается с уже существующим"
)

type Handler struct {
	service BlockerService
	logger  Logger
}

func NewHandler(service BlockerService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleList GET /api/v1/blockers
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.service.List(r.Context(), acting)
	if err != nil {
		h.respondError(w, "GET /blockers", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Blockers)
}

// HandleGet GET /api/v1/blockers/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.service.Get(r.Context(), mux.Vars(r)["id"], acting)
	if err != nil {
		h.respondError(w, "GET /blockers/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleCreate POST /api/v1/blockers
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.CreateBlockerRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /blockers - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req, acting)
	if err != nil {
		h.respondError(w, "POST /blockers", err)
		return
	}

	h.logger.Info("POST /blockers - Blocker created: id=%s, user_id=%s", result.ID, acting.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleDelete DELETE /api/v1/blockers/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	acting, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"], acting); err != nil {
		h.respondError(w, "DELETE /blockers/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, blockerService.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", route)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, blockerService.ErrBlockerNotFound):
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, blockerService.ErrInvalidRange):
		handlers.RespondBadRequest(w, msgInvalidRange)

	case errors.Is(err, blockerService.ErrOverlap):
		handlers.RespondBadRequest(w, msgOverlap)

	case errors.Is(err, blockerService.ErrInvalidInput):
		handlers.RespondBadRequest(w, msgInvalidRequestBody)

	default:
		h.logger.Error("%s - Failed: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
