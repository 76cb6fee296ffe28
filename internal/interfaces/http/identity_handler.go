package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/domain"
)

// Me godoc
// @Summary      Usuario autenticado
// @Description  /api/v1/user exige rol USER y /api/v1/admin rol ADMIN; ambos devuelven la identidad actual.
// @Tags         identity
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/v1/user [get]
// @Router       /api/v1/admin [get]
func Me(c *fiber.Ctx) error {
	u := GetUser(c)
	if u == nil {
		return domain.ErrUnauthenticated
	}
	return c.JSON(dto.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()})
}
