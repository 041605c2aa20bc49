package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/gelp-api/internal/application/analytics"
	"github.com/jhoicas/gelp-api/pkg/logger"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log *logger.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetCounts godoc
// @Summary      Contadores del dashboard
// @Description  Productos, productos con stock, clientes y ventas del día (zona horaria configurada).
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardCountsDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetCounts(c *fiber.Ctx) error {
	out, err := h.uc.GetCounts(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
