package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/shopspring/decimal"
)

// SweetHandler maneja el catálogo de dulces y los movimientos de stock (protegido).
type SweetHandler struct {
	uc *inventory.SweetUseCase
}

// NewSweetHandler construye el handler.
func NewSweetHandler(uc *inventory.SweetUseCase) *SweetHandler {
	return &SweetHandler{uc: uc}
}

// List godoc
// @Summary      Listar dulces
// @Tags         sweets
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.SweetResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/sweets [get]
func (h *SweetHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Search godoc
// @Summary      Buscar dulces
// @Description  Filtros opcionales combinados con AND. name es substring sin distinguir mayúsculas;
// @Description  category es exacta; minPrice y maxPrice son inclusivos.
// @Tags         sweets
// @Security     Bearer
// @Produce      json
// @Param        name      query  string  false  "parte del nombre"
// @Param        category  query  string  false  "categoría exacta"
// @Param        minPrice  query  number  false  "precio mínimo"
// @Param        maxPrice  query  number  false  "precio máximo"
// @Success      200  {array}   dto.SweetResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/sweets/search [get]
func (h *SweetHandler) Search(c *fiber.Ctx) error {
	in := dto.SearchSweetRequest{
		Name:     c.Query("name"),
		Category: c.Query("category"),
	}
	var err error
	if in.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return err
	}
	if in.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return err
	}
	list, err := h.uc.Search(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener dulce
// @Tags         sweets
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del dulce"
// @Success      200  {object}  dto.SweetResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sweets/{id} [get]
func (h *SweetHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear dulce
// @Tags         sweets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSweetRequest  true  "name, category, price, quantity"
// @Success      201   {object}  dto.SweetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/sweets [post]
func (h *SweetHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSweetRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody()
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar dulce
// @Description  Solo se sobrescriben los campos presentes en el body.
// @Tags         sweets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true  "ID del dulce"
// @Param        body  body  dto.UpdateSweetRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.SweetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sweets/{id} [put]
func (h *SweetHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in dto.UpdateSweetRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody()
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar dulce (ADMIN)
// @Tags         sweets
// @Security     Bearer
// @Param        id   path  int  true  "ID del dulce"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sweets/{id} [delete]
func (h *SweetHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Purchase godoc
// @Summary      Comprar unidades
// @Tags         sweets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del dulce"
// @Param        body  body  dto.QuantityRequest  true  "quantity"
// @Success      200   {object}  dto.SweetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c *fiber.Ctx) error {
	id, qty, err := h.movement(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Purchase(c.UserContext(), id, qty)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Restock godoc
// @Summary      Reponer unidades (ADMIN)
// @Tags         sweets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del dulce"
// @Param        body  body  dto.QuantityRequest  true  "quantity"
// @Success      200   {object}  dto.SweetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c *fiber.Ctx) error {
	id, qty, err := h.movement(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Restock(c.UserContext(), id, qty)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *SweetHandler) movement(c *fiber.Ctx) (int64, int, error) {
	id, err := pathID(c)
	if err != nil {
		return 0, 0, err
	}
	var in dto.QuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return 0, 0, invalidBody()
	}
	if err := in.Validate(); err != nil {
		return 0, 0, err
	}
	return id, *in.Quantity, nil
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id debe ser un entero positivo", domain.ErrInvalidInput)
	}
	return int64(id), nil
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser numérico", domain.ErrInvalidInput, key)
	}
	return &d, nil
}
