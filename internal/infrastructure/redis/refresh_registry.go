package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/application/auth"
	"github.com/redis/go-redis/v9"
)

var _ auth.RefreshRegistry = (*RefreshRegistry)(nil)

const refreshKeyPrefix = "refresh_token:"

// RefreshRegistry guarda el jti del refresh token vigente por usuario.
// Emitir uno nuevo reemplaza al anterior, así un token ya rotado deja de servir.
type RefreshRegistry struct {
	rdb *redis.Client
}

// NewRefreshRegistry construye el registro sobre un cliente existente.
func NewRefreshRegistry(rdb *redis.Client) *RefreshRegistry {
	return &RefreshRegistry{rdb: rdb}
}

// Save registra tokenID como el refresh vigente de subject.
func (r *RefreshRegistry) Save(ctx context.Context, subject, tokenID string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, refreshKeyPrefix+subject, tokenID, ttl).Err(); err != nil {
		return fmt.Errorf("guardar refresh token: %w", err)
	}
	return nil
}

// IsCurrent indica si tokenID sigue siendo el refresh vigente de subject.
func (r *RefreshRegistry) IsCurrent(ctx context.Context, subject, tokenID string) (bool, error) {
	stored, err := r.rdb.Get(ctx, refreshKeyPrefix+subject).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("leer refresh token: %w", err)
	}
	return stored == tokenID, nil
}

// Revoke elimina el refresh vigente de subject.
func (r *RefreshRegistry) Revoke(ctx context.Context, subject string) error {
	return r.rdb.Del(ctx, refreshKeyPrefix+subject).Err()
}
