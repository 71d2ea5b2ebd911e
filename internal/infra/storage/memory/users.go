package memory

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/integrations/userservice"
)

// UserDirectory справочник пользователей в памяти
type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserDirectory создает справочник с указанными пользователями
func NewUserDirectory(users ...domain.User) *UserDirectory {
	d := &UserDirectory{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// Put добавляет или заменяет пользователя
func (d *UserDirectory) Put(u domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// GetUser получает пользователя по ID
func (d *UserDirectory) GetUser(_ context.Context, id string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, userservice.ErrUserNotFound
	}
	return &u, nil
}
