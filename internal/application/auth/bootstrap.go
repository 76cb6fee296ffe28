package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
)

// AdminSeed credenciales del administrador inicial.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// AdminSeedResult resultado explícito de EnsureAdmin.
type AdminSeedResult string

const (
	AdminCreated       AdminSeedResult = "created"
	AdminAlreadyExists AdminSeedResult = "admin_exists"
	AdminEmailTaken    AdminSeedResult = "email_taken"
)

// EnsureAdmin crea el ADMIN inicial si no hay ningún ADMIN y el email reservado está libre.
// Es idempotente; se invoca una vez al arrancar el proceso.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, seed AdminSeed) (AdminSeedResult, error) {
	hasAdmin, err := uc.userRepo.ExistsByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("buscar admin: %w", err)
	}
	if hasAdmin {
		return AdminAlreadyExists, nil
	}
	taken, err := uc.userRepo.FindByEmail(ctx, seed.Email)
	if err != nil {
		return "", fmt.Errorf("buscar email reservado: %w", err)
	}
	if taken != nil {
		return AdminEmailTaken, nil
	}
	hash, err := uc.hasher.Hash(seed.Password)
	if err != nil {
		return "", fmt.Errorf("hash password admin: %w", err)
	}
	now := time.Now()
	admin := &entity.User{
		Name:         seed.Name,
		Email:        seed.Email,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("crear admin: %w", err)
	}
	return AdminCreated, nil
}
