// Package middleware HTTP middleware сервиса
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-CarWashService/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/integrations/userservice"
)

// UserIDHeader заголовок с ID действующего пользователя
const UserIDHeader = "X-User-ID"

const (
	msgMissingUser = "не указан пользователь"
	msgUnknownUser = "пользователь не найден"
)

// UserSource источник пользователей
type UserSource interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type userKey struct{}

// WithUser кладет действующего пользователя в контекст
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext возвращает действующего пользователя, загруженного Auth
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(*domain.User)
	return u, ok && u != nil
}

// Auth загружает пользователя по заголовку X-User-ID
func Auth(users UserSource, log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				log.Warn("Auth: %s %s - missing %s header", r.Method, r.URL.Path, UserIDHeader)
				handlers.RespondUnauthorized(w, msgMissingUser)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, userservice.ErrUserNotFound) {
					log.Warn("Auth: user id=%s not found", userID)
					handlers.RespondUnauthorized(w, msgUnknownUser)
					return
				}
				log.Error("Auth: failed to load user id=%s: %v", userID, err)
				handlers.RespondInternalError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
