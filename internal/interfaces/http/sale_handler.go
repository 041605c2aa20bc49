package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/application/sales"
	"github.com/jhoicas/gelp-api/pkg/logger"
)

// IdempotencyKeyHeader cabecera alternativa al campo idempotency_key del body.
const IdempotencyKeyHeader = "Idempotency-Key"

// SaleHandler endpoints de ventas.
type SaleHandler struct {
	uc  *sales.SaleUseCase
	log *logger.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar venta (descuenta stock de forma atómica)
// @Description  El total se recalcula en el servidor. Con Idempotency-Key, un reenvío devuelve la venta original (200, replayed=true).
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de idempotencia"
// @Param        body             body    dto.CreateSaleRequest   true   "Venta"
// @Success      201  {object}  dto.CreateSaleResponse
// @Success      200  {object}  dto.CreateSaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if key := strings.TrimSpace(utils.CopyString(c.Get(IdempotencyKeyHeader))); key != "" {
		in.IdempotencyKey = key
	}
	out, err := h.uc.RegisterSale(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if out.Replayed {
		return c.Status(fiber.StatusOK).JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas (más recientes primero)
// @Tags         sales
// @Produce      json
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}  dto.SaleSummaryResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.ListSales(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return listJSON(c, out, page)
}

// GetByID godoc
// @Summary      Detalle de una venta con sus líneas
// @Tags         sales
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetSaleDetail(c.UserContext(), utils.CopyString(c.Params("id")))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
