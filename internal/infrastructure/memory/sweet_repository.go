package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
)

var _ repository.SweetRepository = (*SweetRepo)(nil)

// SweetRepo SweetRepository en memoria. Las mutaciones compuestas se serializan con TxRunner.
type SweetRepo struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	nextID int64
	byID   map[int64]*entity.Sweet
}

// NewSweetRepository construye el repositorio vacío.
func NewSweetRepository() *SweetRepo {
	return &SweetRepo{byID: make(map[int64]*entity.Sweet)}
}

// Create asigna ID autoincremental y guarda una copia.
func (r *SweetRepo) Create(_ context.Context, sweet *entity.Sweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	sweet.ID = r.nextID
	cp := *sweet
	r.byID[cp.ID] = &cp
	return nil
}

// GetByID obtiene un dulce por ID.
func (r *SweetRepo) GetByID(_ context.Context, id int64) (*entity.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// GetForUpdate igual que GetByID; el bloqueo lo da TxRunner.
func (r *SweetRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Sweet, error) {
	return r.GetByID(ctx, id)
}

// List devuelve todos los dulces en orden de inserción.
func (r *SweetRepo) List(_ context.Context) ([]*entity.Sweet, error) {
	return r.collect(func(*entity.Sweet) bool { return true }), nil
}

// Search filtra por nombre (subcadena, case folding), categoría exacta y rango de precio inclusivo.
func (r *SweetRepo) Search(_ context.Context, f repository.SweetFilter) ([]*entity.Sweet, error) {
	fold := cases.Fold()
	name := fold.String(f.Name)
	return r.collect(func(s *entity.Sweet) bool {
		if name != "" && !strings.Contains(fold.String(s.Name), name) {
			return false
		}
		if f.Category != "" && s.Category != f.Category {
			return false
		}
		if f.MinPrice != nil && s.Price.LessThan(*f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && s.Price.GreaterThan(*f.MaxPrice) {
			return false
		}
		return true
	}), nil
}

// Update reemplaza la fila existente; ErrNotFound si ya no está.
func (r *SweetRepo) Update(_ context.Context, sweet *entity.Sweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[sweet.ID]; !ok {
		return fmt.Errorf("%w: dulce %d", domain.ErrNotFound, sweet.ID)
	}
	cp := *sweet
	r.byID[cp.ID] = &cp
	return nil
}

// Delete elimina la fila; false si no existía. Espera a que termine la transacción en curso,
// igual que el bloqueo de fila en PostgreSQL. No se llama desde dentro de TxRunner.Run.
func (r *SweetRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *SweetRepo) collect(keep func(*entity.Sweet) bool) []*entity.Sweet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*entity.Sweet, 0, len(r.byID))
	for _, s := range r.byID {
		if keep(s) {
			cp := *s
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
