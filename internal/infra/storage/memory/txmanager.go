package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// TxManager выполняет транзакции строго последовательно.
// Откат не поддерживается: записи, сделанные до ошибки, сохраняются.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager создает менеджер транзакций в памяти
func NewTxManager() *TxManager {
	return &TxManager{}
}

// Do выполняет fn под глобальной блокировкой
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

// DoSerializable выполняет fn под глобальной блокировкой
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}
