package repository

import (
	"context"

	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SweetFilter criterios opcionales de búsqueda, combinados con AND.
// Strings vacíos y punteros nil significan "sin restricción".
type SweetFilter struct {
	Name     string // subcadena, sin distinguir mayúsculas
	Category string // igualdad exacta
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// SweetRepository define el puerto de persistencia para Sweet (DIP).
type SweetRepository interface {
	Create(ctx context.Context, sweet *entity.Sweet) error
	GetByID(ctx context.Context, id int64) (*entity.Sweet, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Sweet, error)
	List(ctx context.Context) ([]*entity.Sweet, error)
	Search(ctx context.Context, filter SweetFilter) ([]*entity.Sweet, error)
	Update(ctx context.Context, sweet *entity.Sweet) error
	// Delete devuelve false si el id no existía.
	Delete(ctx context.Context, id int64) (bool, error)
}
