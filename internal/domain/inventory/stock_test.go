package inventory

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
)

func TestWithdraw(t *testing.T) {
	s := &entity.Sweet{ID: 1, Quantity: 100}

	require.NoError(t, Withdraw(s, 10))
	assert.Equal(t, 90, s.Quantity)

	err := Withdraw(s, 150)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(1), stockErr.SweetID)
	assert.Equal(t, 90, s.Quantity, "un rechazo no modifica el stock")

	require.NoError(t, Withdraw(s, 90))
	assert.Equal(t, 0, s.Quantity)

	assert.ErrorIs(t, Withdraw(s, 0), domain.ErrInvalidInput)
}

func TestReplenish(t *testing.T) {
	s := &entity.Sweet{Quantity: 0}
	require.NoError(t, Replenish(s, 7))
	assert.Equal(t, 7, s.Quantity)
	assert.ErrorIs(t, Replenish(s, -1), domain.ErrInvalidInput)
	assert.Equal(t, 7, s.Quantity)
}

func TestReplenish_TopeDeLaColumna(t *testing.T) {
	s := &entity.Sweet{ID: 3, Quantity: 100}
	assert.ErrorIs(t, Replenish(s, math.MaxInt), domain.ErrInvalidInput)
	assert.ErrorIs(t, Replenish(s, MaxQuantity-99), domain.ErrInvalidInput)
	assert.Equal(t, 100, s.Quantity)

	require.NoError(t, Replenish(s, MaxQuantity-100))
	assert.Equal(t, MaxQuantity, s.Quantity)
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, IsLowStock(&entity.Sweet{Quantity: 5}, 5))
	assert.False(t, IsLowStock(&entity.Sweet{Quantity: 6}, 5))
	assert.False(t, IsLowStock(&entity.Sweet{Quantity: 0}, 0))
}
