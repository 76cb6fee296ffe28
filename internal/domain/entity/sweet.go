package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sweet representa un dulce del inventario. Quantity nunca es negativa.
type Sweet struct {
	ID        int64
	Name      string
	Category  string
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
