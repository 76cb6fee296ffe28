package auth

import (
	"context"
	"time"

	"github.com/jhoicas/sweetshop-api/pkg/jwt"
)

// PasswordHasher función unidireccional para credenciales (bcrypt en producción).
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Matches(plain, hash string) bool
}

// TokenService emite y valida tokens firmados. Lo implementa *jwt.Service.
type TokenService interface {
	IssueAccessToken(subject, role string) (*jwt.Issued, error)
	IssueRefreshToken(subject, role string) (*jwt.Issued, error)
	Validate(token string, typ jwt.TokenType) (*jwt.Claims, error)
	ExtractSubject(token string) (string, error)
	RefreshTTL() time.Duration
}

// RefreshRegistry recuerda el único refresh token vigente por usuario (rotación).
// Es opcional: sin registro el refresh token se devuelve tal cual.
type RefreshRegistry interface {
	Save(ctx context.Context, subject, tokenID string, ttl time.Duration) error
	IsCurrent(ctx context.Context, subject, tokenID string) (bool, error)
	Revoke(ctx context.Context, subject string) error
}
