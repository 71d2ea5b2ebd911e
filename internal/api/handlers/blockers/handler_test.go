package blockers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/infra/storage/memory"
	blockerService "github.com/m04kA/SMC-CarWashService/internal/service/blockers"
	"github.com/m04kA/SMC-CarWashService/internal/service/blockers/models"
	"github.com/m04kA/SMC-CarWashService/pkg/logger"
)

func newRouter() *mux.Router {
	users := memory.NewUserDirectory(
		domain.User{ID: "op", CompanyID: "carwash", IsOperatorAdmin: true},
		domain.User{ID: "a1", CompanyID: "microsoft", IsAdmin: true},
		domain.User{ID: "u1", CompanyID: "microsoft"},
	)
	svc := blockerService.NewService(memory.NewBlockerStore(), memory.NewTxManager(), time.UTC, logger.NewNop())
	h := NewHandler(svc, logger.NewNop())

	r := mux.NewRouter()
	r.Use(middleware.Auth(users, logger.NewNop()))
	r.HandleFunc("/blockers", h.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/blockers", h.HandleCreate).Methods(http.MethodPost)
	r.HandleFunc("/blockers/{id}", h.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/blockers/{id}", h.HandleDelete).Methods(http.MethodDelete)
	return r
}

func do(r http.Handler, userID, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.UserIDHeader, userID)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Lifecycle(t *testing.T) {
	r := newRouter()

	rec := do(r, "op", http.MethodPost, "/blockers", `{"startDate":"2019-11-20T00:00:00Z","comment":"maintenance"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.BlockerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, time.Date(2019, 11, 20, 23, 59, 59, 0, time.UTC), created.EndDate.Truncate(time.Second))

	rec = do(r, "a1", http.MethodGet, "/blockers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.BlockerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(r, "a1", http.MethodGet, "/blockers/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, "op", http.MethodDelete, "/blockers/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, "op", http.MethodGet, "/blockers/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Errors(t *testing.T) {
	r := newRouter()
	require.Equal(t, http.StatusCreated,
		do(r, "op", http.MethodPost, "/blockers", `{"startDate":"2019-11-20T00:00:00Z"}`).Code)

	tests := []struct {
		name   string
		user   string
		method string
		path   string
		body   string
		status int
	}{
		{"user cannot list", "u1", http.MethodGet, "/blockers", "", http.StatusForbidden},
		{"admin cannot create", "a1", http.MethodPost, "/blockers", `{"startDate":"2019-12-01T00:00:00Z"}`, http.StatusForbidden},
		{"overlap", "op", http.MethodPost, "/blockers", `{"startDate":"2019-11-20T10:00:00Z"}`, http.StatusBadRequest},
		{"start after end", "op", http.MethodPost, "/blockers", `{"startDate":"2019-12-02T00:00:00Z","endDate":"2019-12-01T00:00:00Z"}`, http.StatusBadRequest},
		{"bad body", "op", http.MethodPost, "/blockers", `{"startDate":`, http.StatusBadRequest},
		{"unknown id", "op", http.MethodDelete, "/blockers/missing", "", http.StatusNotFound},
		{"no user", "", http.MethodGet, "/blockers", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(r, tt.user, tt.method, tt.path, tt.body).Code)
		})
	}
}
