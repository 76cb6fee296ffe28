package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// maxPrice cota exclusiva de NUMERIC(12,2): 10 dígitos enteros.
var maxPrice = decimal.New(1, 10)

// validPrice exige precio positivo, a lo sumo 2 decimales y dentro de NUMERIC(12,2).
// Postgres redondearía en silencio lo que sobra.
func validPrice(p decimal.Decimal) error {
	switch {
	case !p.IsPositive():
		return fmt.Errorf("%w: price debe ser positivo", domain.ErrInvalidInput)
	case !p.Equal(p.Round(2)):
		return fmt.Errorf("%w: price admite a lo sumo 2 decimales", domain.ErrInvalidInput)
	case p.GreaterThanOrEqual(maxPrice):
		return fmt.Errorf("%w: price debe ser menor que %s", domain.ErrInvalidInput, maxPrice)
	}
	return nil
}

func validQuantity(q int) error {
	if q <= 0 || q > inventory.MaxQuantity {
		return fmt.Errorf("%w: quantity debe estar entre 1 y %d", domain.ErrInvalidInput, inventory.MaxQuantity)
	}
	return nil
}

// CreateSweetRequest entrada para crear un dulce. Punteros para distinguir "ausente" de cero.
type CreateSweetRequest struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

// Validate: name y category no vacíos, price y quantity presentes y en rango.
func (r *CreateSweetRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	if r.Name == "" || r.Category == "" {
		return fmt.Errorf("%w: name y category son requeridos", domain.ErrInvalidInput)
	}
	if r.Price == nil {
		return fmt.Errorf("%w: price es requerido", domain.ErrInvalidInput)
	}
	if err := validPrice(*r.Price); err != nil {
		return err
	}
	if r.Quantity == nil {
		return fmt.Errorf("%w: quantity es requerido", domain.ErrInvalidInput)
	}
	return validQuantity(*r.Quantity)
}

// UpdateSweetRequest actualización parcial: solo se sobrescriben los campos no nil.
type UpdateSweetRequest struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

// Validate: price y quantity, si vienen, deben estar en rango; name y category no pueden quedar vacíos.
func (r *UpdateSweetRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("%w: name no puede ser vacío", domain.ErrInvalidInput)
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return fmt.Errorf("%w: category no puede ser vacío", domain.ErrInvalidInput)
	}
	if r.Price != nil {
		if err := validPrice(*r.Price); err != nil {
			return err
		}
	}
	if r.Quantity != nil {
		return validQuantity(*r.Quantity)
	}
	return nil
}

// QuantityRequest body de purchase y restock.
type QuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// Validate exige quantity entre 1 y inventory.MaxQuantity.
func (r *QuantityRequest) Validate() error {
	if r.Quantity == nil {
		return fmt.Errorf("%w: quantity es requerido", domain.ErrInvalidInput)
	}
	return validQuantity(*r.Quantity)
}

// SearchSweetRequest filtros de GET /api/sweets/search (todos opcionales).
type SearchSweetRequest struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// SweetResponse salida de un dulce.
type SweetResponse struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// MarshalJSON emite price como número JSON (2.5), no como string.
func (r SweetResponse) MarshalJSON() ([]byte, error) {
	type plain SweetResponse
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(r), Price: json.Number(r.Price.String())})
}
