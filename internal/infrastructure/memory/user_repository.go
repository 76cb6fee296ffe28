package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo UserRepository en memoria, protegido por mutex. Emails únicos.
type UserRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*entity.User
}

// NewUserRepository construye el repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{byID: make(map[int64]*entity.User)}
}

// Create asigna ID y guarda una copia.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.byID[cp.ID] = &cp
	return nil
}

// FindByEmail obtiene un usuario por email.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ExistsByRole indica si algún usuario tiene el rol.
func (r *UserRepo) ExistsByRole(_ context.Context, role entity.Role) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}
