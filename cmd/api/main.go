package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jhoicas/gelp-api/docs"
	appanalytics "github.com/jhoicas/gelp-api/internal/application/analytics"
	appinventory "github.com/jhoicas/gelp-api/internal/application/inventory"
	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/jhoicas/gelp-api/internal/application/sales"
	"github.com/jhoicas/gelp-api/internal/application/usecase"
	"github.com/jhoicas/gelp-api/internal/infrastructure/cache"
	"github.com/jhoicas/gelp-api/internal/infrastructure/metrics"
	httpRouter "github.com/jhoicas/gelp-api/internal/interfaces/http"
	"github.com/jhoicas/gelp-api/pkg/config"
	"github.com/jhoicas/gelp-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// @title        GELP API
// @version      1.0
// @description  Registro de ventas y libro de stock.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	var idemCache ports.IdempotencyCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := cache.Ping(ctx, redisClient); err != nil {
			// La caché es opcional: sin Redis la idempotencia se resuelve contra el almacenamiento.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible al arrancar")
		}
		idemCache = cache.NewRedisIdempotencyCache(redisClient, cfg.Sales.IdempotencyTTL)
	}

	var salesMetrics ports.SalesMetrics
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := metrics.New(registry)
		if err != nil {
			log.Fatal().Err(err).Msg("registrar métricas")
		}
		salesMetrics = m
	}

	categoryUC := usecase.NewCategoryUseCase(store.Categories)
	productUC := usecase.NewProductUseCase(store.Products, store.Categories)
	clientUC := usecase.NewClientUseCase(store.Clients)
	supplierUC := usecase.NewSupplierUseCase(store.Suppliers)
	stockUC := appinventory.NewStockLedgerUseCase(
		store.TxRunner, store.Stock, store.Products, store.Suppliers, store.StockEntries,
		salesMetrics, log, cfg.Sales.Timeout,
	)
	saleUC := sales.NewSaleUseCase(
		store.TxRunner, store.Products, store.Clients, store.Sales,
		idemCache, salesMetrics, log,
		sales.Config{Timeout: cfg.Sales.Timeout, MaxAttempts: cfg.Sales.MaxAttempts},
	)
	dashboardUC := appanalytics.NewDashboardUseCase(store.Dashboard, cfg.Dashboard.Location)

	app := httpRouter.NewApp(cfg.App.Name)
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "GELP API",
	}))

	deps := httpRouter.RouterDeps{
		CategoryUC:  categoryUC,
		ProductUC:   productUC,
		ClientUC:    clientUC,
		SupplierUC:  supplierUC,
		StockUC:     stockUC,
		SaleUC:      saleUC,
		DashboardUC: dashboardUC,
		Logger:      log,
		Health:      store.Health,
	}
	if registry != nil {
		deps.Metrics = registry
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
