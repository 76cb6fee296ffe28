package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
)

// MaxQuantity tope de unidades por dulce: la columna quantity es INTEGER.
const MaxQuantity = math.MaxInt32

// Withdraw descuenta requested unidades del dulce. Si el resultado sería negativo
// devuelve *domain.InsufficientStockError y no modifica s.
func Withdraw(s *entity.Sweet, requested int) error {
	if requested <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	newQty := s.Quantity - requested
	if newQty < 0 {
		return &domain.InsufficientStockError{SweetID: s.ID, Available: s.Quantity, Requested: requested}
	}
	s.Quantity = newQty
	return nil
}

// Replenish suma quantity unidades. Rechaza la reposición si el total superaría MaxQuantity
// y en ese caso no modifica s.
func Replenish(s *entity.Sweet, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if quantity > MaxQuantity || s.Quantity > MaxQuantity-quantity {
		return fmt.Errorf("%w: el stock del dulce %d superaría %d unidades", domain.ErrInvalidInput, s.ID, MaxQuantity)
	}
	s.Quantity += quantity
	return nil
}

// IsLowStock indica si la cantidad quedó en o por debajo del umbral (umbral <= 0 desactiva el aviso).
func IsLowStock(s *entity.Sweet, threshold int) bool {
	return threshold > 0 && s.Quantity <= threshold
}
