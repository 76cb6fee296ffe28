package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/sweetshop-api/internal/domain"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx; los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Nombres de los CHECK de sweets (migrations/001_init.sql).
const (
	sweetsQuantityCheck = "sweets_quantity_check"
	sweetsPriceCheck    = "sweets_price_check"
)

// checkViolation devuelve el constraint violado si err es una violación de CHECK (23514).
func checkViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23514" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// sweetCheckError traduce la violación de un CHECK de sweets (nil si err no lo es).
// Solo quantity >= 0 es falta de stock; price > 0 u otro CHECK es entrada inválida.
func sweetCheckError(err error, id int64) error {
	name, ok := checkViolation(err)
	switch {
	case !ok:
		return nil
	case name == sweetsQuantityCheck:
		return fmt.Errorf("dulce %d: %w", id, domain.ErrInsufficientStock)
	default:
		return fmt.Errorf("%w: dulce %d viola %s", domain.ErrInvalidInput, id, name)
	}
}
