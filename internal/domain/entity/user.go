package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/domain"
)

// Role es el conjunto cerrado de roles del sistema.
type Role string

// Roles válidos para User.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid indica si r es uno de los roles conocidos.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string { return string(r) }

// ParseRole convierte un string (sin distinguir mayúsculas) en Role. Un rol desconocido es un error, nunca un rol vacío.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, s)
	}
	return r, nil
}

// User representa una cuenta del sistema. El email es la identidad usada en los tokens.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
