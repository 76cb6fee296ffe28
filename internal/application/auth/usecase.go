package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
	"github.com/jhoicas/sweetshop-api/pkg/jwt"
)

// AuthUseCase casos de uso de autenticación: registro, login y refresh.
type AuthUseCase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenService
	registry RefreshRegistry

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase construye el caso de uso de auth. registry puede ser nil.
func NewAuthUseCase(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenService, registry RefreshRegistry) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, hasher: hasher, tokens: tokens, registry: registry}
}

// SignUp hashea el password y persiste un usuario con rol USER.
func (uc *AuthUseCase) SignUp(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now()
	user := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         entity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// SignIn verifica email/password y emite access + refresh token.
// Usuario inexistente y password incorrecto devuelven el mismo ErrAuthenticationFailed.
func (uc *AuthUseCase) SignIn(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Mismo costo de bcrypt que un usuario real.
		uc.hasher.Matches(in.Password, uc.placeholderHash())
		return nil, domain.ErrAuthenticationFailed
	}
	if !uc.hasher.Matches(in.Password, user.PasswordHash) {
		return nil, domain.ErrAuthenticationFailed
	}
	access, err := uc.tokens.IssueAccessToken(user.Email, user.Role.String())
	if err != nil {
		return nil, err
	}
	refresh, err := uc.issueRefresh(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Token: access.Token, RefreshToken: refresh}, nil
}

// Refresh extrae el subject, carga al usuario vigente y valida el refresh token contra él.
// Con RefreshRegistry rota el refresh token; sin él lo devuelve tal cual.
// Nunca devuelve (nil, nil): un token inválido es ErrInvalidToken o ErrExpiredToken.
func (uc *AuthUseCase) Refresh(ctx context.Context, in dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	subject, err := uc.tokens.ExtractSubject(in.Token)
	if err != nil {
		return nil, mapTokenError(err)
	}
	user, err := uc.userRepo.FindByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// El usuario fue borrado: su refresh vigente ya no sirve para nadie.
		if uc.registry != nil {
			_ = uc.registry.Revoke(ctx, subject)
		}
		return nil, fmt.Errorf("%w: usuario del token no existe", domain.ErrInvalidToken)
	}
	claims, err := uc.tokens.Validate(in.Token, jwt.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if claims.Subject != user.Email {
		return nil, domain.ErrInvalidToken
	}
	refresh := in.Token
	if uc.registry != nil {
		current, err := uc.registry.IsCurrent(ctx, user.Email, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("consultar refresh token: %w", err)
		}
		if !current {
			return nil, fmt.Errorf("%w: refresh token revocado", domain.ErrInvalidToken)
		}
		if refresh, err = uc.issueRefresh(ctx, user); err != nil {
			return nil, err
		}
	}
	access, err := uc.tokens.IssueAccessToken(user.Email, user.Role.String())
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Token: access.Token, RefreshToken: refresh}, nil
}

// LoadIdentity carga el usuario dueño de un subject (email). ErrNotFound si no existe.
func (uc *AuthUseCase) LoadIdentity(ctx context.Context, subject string) (*entity.User, error) {
	user, err := uc.userRepo.FindByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (uc *AuthUseCase) issueRefresh(ctx context.Context, user *entity.User) (string, error) {
	refresh, err := uc.tokens.IssueRefreshToken(user.Email, user.Role.String())
	if err != nil {
		return "", err
	}
	if uc.registry != nil {
		if err := uc.registry.Save(ctx, user.Email, refresh.ID, uc.tokens.RefreshTTL()); err != nil {
			return "", fmt.Errorf("guardar refresh token: %w", err)
		}
	}
	return refresh.Token, nil
}

func (uc *AuthUseCase) placeholderHash() string {
	uc.dummyOnce.Do(func() {
		uc.dummyHash, _ = uc.hasher.Hash("placeholder-password-never-matches")
	})
	return uc.dummyHash
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return domain.ErrExpiredToken
	case errors.Is(err, jwt.ErrInvalidToken):
		return fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	default:
		return err
	}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role.String(),
	}
}
