package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	appanalytics "github.com/jhoicas/gelp-api/internal/application/analytics"
	appinventory "github.com/jhoicas/gelp-api/internal/application/inventory"
	"github.com/jhoicas/gelp-api/internal/application/sales"
	"github.com/jhoicas/gelp-api/internal/application/usecase"
	"github.com/jhoicas/gelp-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC  *usecase.CategoryUseCase
	ProductUC   *usecase.ProductUseCase
	ClientUC    *usecase.ClientUseCase
	SupplierUC  *usecase.SupplierUseCase
	StockUC     *appinventory.StockLedgerUseCase
	SaleUC      *sales.SaleUseCase
	DashboardUC *appanalytics.DashboardUseCase
	Logger      *logger.Logger

	// Health verifica el almacenamiento; nil = siempre ok.
	Health func(ctx context.Context) error
	// Metrics expone /metrics si no es nil.
	Metrics prometheus.Gatherer
}

// NewApp construye la app fiber del servicio. Immutable: los valores de Params, Get y Query
// se copian del buffer del request; los repositorios en memoria los guardan como claves.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      name,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")

	app.Use(RequestID())
	app.Use(RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.Health(ctx); err != nil {
				log.Warn().Err(err).Msg("health check fallido")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	clients := api.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC, log)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC, log)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	// Rutas fijas antes de /:productId.
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC, log)
	stock.Get("/", stockHandler.List)
	stock.Post("/entries", stockHandler.RegisterEntry)
	stock.Get("/entries", stockHandler.ListEntries)
	stock.Post("/adjustments", stockHandler.AdjustMany)
	stock.Get("/:productId", stockHandler.Get)
	stock.Put("/:productId", stockHandler.Set)
	stock.Post("/:productId/adjust", stockHandler.Adjust)

	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, log)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log)
	api.Get("/dashboard", dashboardHandler.GetCounts)
}
