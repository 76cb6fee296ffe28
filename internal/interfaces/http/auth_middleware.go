package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/pkg/jwt"
)

// Locals keys del usuario autenticado en Fiber.
const (
	LocalUser   = "user"
	LocalUserID = "user_id"
)

// TokenValidator valida un token firmado del tipo pedido. Lo implementa *jwt.Service.
type TokenValidator interface {
	Validate(token string, typ jwt.TokenType) (*jwt.Claims, error)
}

// IdentityLoader carga el usuario vigente de un subject; domain.ErrNotFound si ya no existe.
type IdentityLoader func(ctx context.Context, subject string) (*entity.User, error)

// Gate decide cada petición con la primera regla que coincide:
// pública pasa sin token; el resto exige un access token válido cuyo usuario exista,
// y si la regla pide un rol se compara contra el rol actual del usuario, no el del token.
func Gate(tokens TokenValidator, load IdentityLoader, rules []AccessRule) fiber.Handler {
	if rules == nil {
		rules = DefaultAccessRules()
	}
	return func(c *fiber.Ctx) error {
		access := resolveAccess(rules, c.Method(), c.Path())
		if access.Public {
			return c.Next()
		}

		raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		claims, err := tokens.Validate(raw, jwt.AccessToken)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				return domain.ErrExpiredToken
			}
			return domain.ErrInvalidToken
		}
		user, err := load(c.UserContext(), claims.Subject)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidToken
			}
			return err
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID)

		if access.Role != "" && user.Role != access.Role {
			return domain.ErrForbidden
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrUnauthenticated
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", domain.ErrInvalidToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}

// GetUser devuelve el usuario autenticado (después del Gate).
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// GetUserID devuelve el ID del usuario autenticado; 0 si no hay.
func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalUserID).(int64)
	return id
}
