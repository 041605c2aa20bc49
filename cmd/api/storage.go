package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
	"github.com/jhoicas/gelp-api/internal/infrastructure/memory"
	"github.com/jhoicas/gelp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gelp-api/pkg/config"
	"github.com/jhoicas/gelp-api/pkg/logger"
)

// storage repositorios y transacciones del backend elegido por STORAGE_DRIVER.
type storage struct {
	TxRunner     ports.TxRunner
	Categories   repository.CategoryRepository
	Products     repository.ProductRepository
	Clients      repository.ClientRepository
	Suppliers    repository.SupplierRepository
	Stock        repository.StockRepository
	StockEntries repository.StockEntryRepository
	Sales        repository.SaleRepository
	Dashboard    repository.DashboardRepository

	Health func(ctx context.Context) error
	Close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return openMemory(ctx, cfg, log)
	}
	return openPostgres(ctx, cfg, log)
}

func openMemory(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	store := memory.NewStore()
	if cfg.Storage.MemorySeed {
		if err := store.Seed(ctx, time.Now()); err != nil {
			return nil, fmt.Errorf("seed memoria: %w", err)
		}
		log.Info().Msg("datos de ejemplo cargados en memoria")
	}
	log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	return &storage{
		TxRunner:     store,
		Categories:   store.Categories(),
		Products:     store.Products(),
		Clients:      store.Clients(),
		Suppliers:    store.Suppliers(),
		Stock:        store.Stock(),
		StockEntries: store.StockEntries(),
		Sales:        store.Sales(),
		Dashboard:    store.Dashboard(),
		Close:        func() {},
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		if len(applied) > 0 {
			log.Info().Str("scripts", strings.Join(applied, ",")).Msg("migraciones aplicadas")
		}
	}
	return &storage{
		TxRunner:     postgres.NewTxRunner(pool, cfg.Sales.LockTimeout),
		Categories:   postgres.NewCategoryRepository(pool),
		Products:     postgres.NewProductRepository(pool),
		Clients:      postgres.NewClientRepository(pool),
		Suppliers:    postgres.NewSupplierRepository(pool),
		Stock:        postgres.NewStockRepository(pool),
		StockEntries: postgres.NewStockEntryRepository(pool),
		Sales:        postgres.NewSaleRepository(pool),
		Dashboard:    postgres.NewDashboardRepository(pool),
		Health:       pool.Ping,
		Close:        pool.Close,
	}, nil
}
