package dto

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/jhoicas/sweetshop-api/internal/domain"
)

// RegisterRequest entrada para registro: name, email, password.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate comprueba presencia y formato antes de llegar al caso de uso.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return fmt.Errorf("%w: name, email y password son requeridos", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: email con formato inválido", domain.ErrInvalidInput)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}
	return nil
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate exige email y password.
func (r *LoginRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" || r.Password == "" {
		return fmt.Errorf("%w: email y password son requeridos", domain.ErrInvalidInput)
	}
	return nil
}

// RefreshTokenRequest body de POST /api/auth/refresh (el refresh token viaja en el body).
type RefreshTokenRequest struct {
	Token string `json:"token"`
}

// Validate exige el token.
func (r *RefreshTokenRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return fmt.Errorf("%w: token es requerido", domain.ErrInvalidInput)
	}
	return nil
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenResponse par de tokens devuelto por login y refresh.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
