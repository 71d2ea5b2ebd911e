package dbmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "select", operationOf("SELECT id FROM reservations"))
	assert.Equal(t, "insert", operationOf("  INSERT INTO reservations (id) VALUES ($1)"))
	assert.Equal(t, "unknown", operationOf(""))
}

func TestGetExecutor_WithoutTransaction_ReturnsFallback(t *testing.T) {
	fallback := &DB{}

	got := GetExecutor(context.Background(), fallback)

	assert.Same(t, fallback, got)
	assert.False(t, IsInTransaction(context.Background()))
}

func TestGetExecutor_WithTransaction_ReturnsTx(t *testing.T) {
	tx := &Tx{}
	ctx := WithTx(context.Background(), tx)

	got := GetExecutor(ctx, &DB{})

	assert.Same(t, tx, got)
	assert.True(t, IsInTransaction(ctx))
}
