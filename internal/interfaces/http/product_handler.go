package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/application/usecase"
	"github.com/jhoicas/gelp-api/pkg/logger"
)

// ProductHandler maneja las peticiones HTTP para Product.
type ProductHandler struct {
	uc  *usecase.ProductUseCase
	log *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos (con nombre de categoría)
// @Tags         products
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(100)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto (y su stock)
// @Tags         products
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
