package http

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/sweetshop-api/internal/application/auth"
	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC  *auth.AuthUseCase
	SweetUC *inventory.SweetUseCase
	Tokens  TokenValidator
	Rules   []AccessRule // nil = DefaultAccessRules

	Limiter Limiter                     // nil = sin rate limit en login/register
	Health  func(context.Context) error // nil = siempre ok
	Metrics http.Handler                // nil = sin /metrics
	Log     zerolog.Logger
}

// Router registra el Gate y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(Gate(deps.Tokens, deps.AuthUC.LoadIdentity, deps.Rules))

	app.Get("/health", healthHandler(deps.Health))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Auth (público), también bajo /api/v1/auth
	authHandler := NewAuthHandler(deps.AuthUC)
	var limit fiber.Handler
	if deps.Limiter != nil {
		limit = RateLimit(deps.Limiter, deps.Log)
	}
	mountAuth(api.Group("/auth"), authHandler, limit)
	mountAuth(api.Group("/v1/auth"), authHandler, limit)

	// Sweets (protegido; DELETE y restock solo ADMIN según las reglas del Gate)
	sweets := api.Group("/sweets")
	sweetHandler := NewSweetHandler(deps.SweetUC)
	sweets.Get("/", sweetHandler.List)
	sweets.Get("/search", sweetHandler.Search)
	sweets.Post("/", sweetHandler.Create)
	sweets.Get("/:id", sweetHandler.GetByID)
	sweets.Put("/:id", sweetHandler.Update)
	sweets.Delete("/:id", sweetHandler.Delete)
	sweets.Post("/:id/purchase", sweetHandler.Purchase)
	sweets.Post("/:id/restock", sweetHandler.Restock)

	// Identidad por rol
	v1 := api.Group("/v1")
	v1.Get("/user", Me)
	v1.Get("/admin", Me)
}

func mountAuth(group fiber.Router, h *AuthHandler, limit fiber.Handler) {
	if limit != nil {
		group.Post("/register", limit, h.Register)
		group.Post("/login", limit, h.Login)
	} else {
		group.Post("/register", h.Register)
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
}

// healthHandler godoc
// @Summary      Estado del servicio
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func healthHandler(check func(context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			if err := check(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "storage": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "up"})
	}
}
