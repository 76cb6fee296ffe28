package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
)

var _ repository.SweetRepository = (*SweetRepo)(nil)

const sweetColumns = `id, name, category, price, quantity, created_at, updated_at`

// SweetRepo implementación del puerto SweetRepository sobre PostgreSQL (usable con pool o tx).
type SweetRepo struct {
	q Querier
}

// NewSweetRepository construye el adaptador de persistencia para dulces. Pasar pool o tx (Querier).
func NewSweetRepository(q Querier) *SweetRepo {
	return &SweetRepo{q: q}
}

// Create persiste un nuevo dulce y asigna el ID generado.
func (r *SweetRepo) Create(ctx context.Context, sweet *entity.Sweet) error {
	query := `
		INSERT INTO sweets (name, category, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		sweet.Name, sweet.Category, sweet.Price, sweet.Quantity, sweet.CreatedAt, sweet.UpdatedAt,
	).Scan(&sweet.ID)
	if err != nil {
		if _, ok := checkViolation(err); ok {
			return fmt.Errorf("%w: precio o cantidad fuera de rango", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert sweet: %w", err)
	}
	return nil
}

// GetByID obtiene un dulce por ID.
func (r *SweetRepo) GetByID(ctx context.Context, id int64) (*entity.Sweet, error) {
	return r.getOne(ctx, `SELECT `+sweetColumns+` FROM sweets WHERE id = $1`, id)
}

// GetForUpdate obtiene el dulce y bloquea la fila (SELECT FOR UPDATE). Solo tiene efecto dentro de una tx.
func (r *SweetRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Sweet, error) {
	return r.getOne(ctx, `SELECT `+sweetColumns+` FROM sweets WHERE id = $1 FOR UPDATE`, id)
}

// List devuelve todos los dulces en orden de inserción.
func (r *SweetRepo) List(ctx context.Context) ([]*entity.Sweet, error) {
	return r.queryMany(ctx, `SELECT `+sweetColumns+` FROM sweets ORDER BY id`)
}

// Search arma una conjunción de predicados con los filtros presentes.
func (r *SweetRepo) Search(ctx context.Context, f repository.SweetFilter) ([]*entity.Sweet, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Name != "" {
		add(`name ILIKE '%' || ? || '%' ESCAPE '\'`, escapeLike(f.Name))
	}
	if f.Category != "" {
		add(`category = ?`, f.Category)
	}
	if f.MinPrice != nil {
		add(`price >= ?`, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(`price <= ?`, *f.MaxPrice)
	}
	query := `SELECT ` + sweetColumns + ` FROM sweets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`
	return r.queryMany(ctx, query, args...)
}

// Update sobrescribe nombre, categoría, precio y cantidad.
func (r *SweetRepo) Update(ctx context.Context, sweet *entity.Sweet) error {
	query := `
		UPDATE sweets SET name = $2, category = $3, price = $4, quantity = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		sweet.ID, sweet.Name, sweet.Category, sweet.Price, sweet.Quantity, sweet.UpdatedAt,
	)
	if err != nil {
		if mapped := sweetCheckError(err, sweet.ID); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update sweet: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: dulce %d", domain.ErrNotFound, sweet.ID)
	}
	return nil
}

// Delete elimina un dulce por ID; false si no existía.
func (r *SweetRepo) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sweets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete sweet: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *SweetRepo) getOne(ctx context.Context, query string, id int64) (*entity.Sweet, error) {
	var s entity.Sweet
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sweet: %w", err)
	}
	return &s, nil
}

func (r *SweetRepo) queryMany(ctx context.Context, query string, args ...any) ([]*entity.Sweet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Sweet, 0)
	for rows.Next() {
		var s entity.Sweet
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sweet: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// escapeLike neutraliza los comodines de LIKE en la entrada del usuario.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
