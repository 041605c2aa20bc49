package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jhoicas/gelp-api/internal/application/dto"
	appinventory "github.com/jhoicas/gelp-api/internal/application/inventory"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/inventory"
	"github.com/jhoicas/gelp-api/pkg/logger"
)

// StockHandler endpoints del libro de stock.
type StockHandler struct {
	uc  *appinventory.StockLedgerUseCase
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *appinventory.StockLedgerUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar stock con nombre de producto
// @Tags         stock
// @Produce      json
// @Success      200  {array}  dto.StockListItemResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListStock(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	if out == nil {
		out = []dto.StockListItemResponse{}
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Cantidad actual de un producto (0 si no tiene fila)
// @Tags         stock
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetQuantity(c.UserContext(), utils.CopyString(c.Params("productId")))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Set godoc
// @Summary      Fijar la cantidad absoluta de un producto
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Param        body       body  dto.SetStockRequest  true  "Cantidad"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId} [put]
func (h *StockHandler) Set(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Quantity == nil {
		return writeError(c, h.log, domain.Invalid("quantity", "requerido"))
	}
	ctx := c.UserContext()
	id := utils.CopyString(c.Params("productId"))
	if err := h.uc.SetQuantity(ctx, id, *in.Quantity); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.GetQuantity(ctx, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste relativo (delta) de un producto; nunca deja stock negativo
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Param        body       body  dto.AdjustStockRequest  true  "Delta"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id := utils.CopyString(c.Params("productId"))
	qty, err := h.uc.Adjust(c.UserContext(), id, in.Delta)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"product_id": id, "quantity": qty})
}

// AdjustMany godoc
// @Summary      Ajuste agrupado de varios productos (todo o nada)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustManyRequest  true  "Deltas"
// @Success      200   {object}  dto.AdjustManyResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) AdjustMany(c *fiber.Ctx) error {
	var in dto.AdjustManyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	deltas := make([]inventory.Delta, 0, len(in.Items))
	for _, it := range in.Items {
		deltas = append(deltas, inventory.Delta{ProductID: strings.Clone(strings.TrimSpace(it.ProductID)), Amount: it.Delta})
	}
	out, err := h.uc.AdjustMany(c.UserContext(), deltas)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AdjustManyResponse{Quantities: out})
}

// RegisterEntry godoc
// @Summary      Registrar entrada de mercadería (suma stock y recalcula costo)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockEntryRequest  true  "Entrada"
// @Success      201   {object}  dto.StockEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *StockHandler) RegisterEntry(c *fiber.Ctx) error {
	var in dto.CreateStockEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RegisterEntry(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListEntries godoc
// @Summary      Historial de entradas, opcionalmente por producto
// @Tags         stock
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        limit       query  int     false  "Límite"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {array}  dto.StockEntryResponse
// @Router       /api/stock/entries [get]
func (h *StockHandler) ListEntries(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.ListEntries(c.UserContext(), utils.CopyString(c.Query("product_id")), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return listJSON(c, out, page)
}
