package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/application/usecase"
	"github.com/jhoicas/gelp-api/pkg/logger"
)

func listJSON[T any](c *fiber.Ctx, items []T, page dto.PageRequest) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// CategoryHandler CRUD de categorías.
type CategoryHandler struct {
	uc  *usecase.CategoryUseCase
	log *logger.Logger
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *usecase.CategoryUseCase, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CategoryRequest  true  "Categoría"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CategoryRequest
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
// @Summary      Obtener categoría
// @Tags         categories
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.CategoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar categorías
// @Tags         categories
// @Produce      json
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Offset"
// @Success      200     {array}  dto.CategoryResponse
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return listJSON(c, out, page)
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.CategoryRequest  true  "Categoría"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var in dto.CategoryRequest
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
// @Summary      Eliminar categoría
// @Tags         categories
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClientHandler CRUD de clientes.
type ClientHandler struct {
	uc  *usecase.ClientUseCase
	log *logger.Logger
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *usecase.ClientUseCase, log *logger.Logger) *ClientHandler {
	return &ClientHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear cliente
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClientRequest  true  "Cliente"
// @Success      201   {object}  dto.ClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in dto.ClientRequest
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
// @Summary      Obtener cliente
// @Tags         clients
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.ClientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar clientes
// @Tags         clients
// @Produce      json
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Offset"
// @Success      200     {array}  dto.ClientResponse
// @Router       /api/clients [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return listJSON(c, out, page)
}

// Update godoc
// @Summary      Actualizar cliente
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.ClientRequest  true  "Cliente"
// @Success      200   {object}  dto.ClientResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	var in dto.ClientRequest
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
// @Summary      Eliminar cliente (las ventas quedan sin cliente)
// @Tags         clients
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SupplierHandler CRUD de proveedores.
type SupplierHandler struct {
	uc  *usecase.SupplierUseCase
	log *logger.Logger
}

// NewSupplierHandler construye el handler.
func NewSupplierHandler(uc *usecase.SupplierUseCase, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear proveedor
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplierRequest  true  "Proveedor"
// @Success      201   {object}  dto.SupplierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/suppliers [post]
func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	var in dto.SupplierRequest
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
// @Summary      Obtener proveedor
// @Tags         suppliers
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.SupplierResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar proveedores
// @Tags         suppliers
// @Produce      json
// @Success      200  {array}  dto.SupplierResponse
// @Router       /api/suppliers [get]
func (h *SupplierHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return listJSON(c, out, page)
}

// Update godoc
// @Summary      Actualizar proveedor
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.SupplierRequest  true  "Proveedor"
// @Success      200   {object}  dto.SupplierResponse
// @Router       /api/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *fiber.Ctx) error {
	var in dto.SupplierRequest
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
// @Summary      Eliminar proveedor
// @Tags         suppliers
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
