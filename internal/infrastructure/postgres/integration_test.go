package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/jhoicas/gelp-api/internal/application/sales"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gelp-api/pkg/config"
)

// testPool abre la base indicada en GELP_TEST_DATABASE_URL, aplica migraciones y vacía las tablas.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("GELP_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GELP_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE sale_items, sales, stock_entries, stock, products, categories, clients, suppliers CASCADE`)
	require.NoError(t, err)
	return pool
}

func createProduct(t *testing.T, pool *pgxpool.Pool, name string, qty int) string {
	t.Helper()
	ctx := context.Background()
	id := uuid.New().String()
	now := time.Now()
	require.NoError(t, postgres.NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: id, Name: name, Price: decimal.NewFromInt(2), Status: entity.ProductStatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, postgres.NewStockRepository(pool).Upsert(ctx, &entity.StockLevel{ProductID: id, Quantity: qty, LastUpdated: now}))
	return id
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := testPool(t)
	applied, err := postgres.Migrate(context.Background(), pool)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestStockCheckConstraint(t *testing.T) {
	pool := testPool(t)
	id := createProduct(t, pool, "Leite", 1)

	err := postgres.NewStockRepository(pool).Upsert(context.Background(), &entity.StockLevel{ProductID: id, Quantity: -1, LastUpdated: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestStockGetMissingRowAndBadID(t *testing.T) {
	pool := testPool(t)
	id := createProduct(t, pool, "Pão", 0)
	_, err := pool.Exec(context.Background(), `DELETE FROM stock WHERE product_id = $1`, id)
	require.NoError(t, err)

	repo := postgres.NewStockRepository(pool)
	level, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, level.Quantity)
	assert.True(t, level.LastUpdated.IsZero())

	_, err = postgres.NewProductRepository(pool).GetByID(context.Background(), "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTxRunnerRollsBack(t *testing.T) {
	pool := testPool(t)
	id := createProduct(t, pool, "Queijo", 5)
	runner := postgres.NewTxRunner(pool, time.Second)

	err := runner.Run(context.Background(), func(tx ports.TxRepositories) error {
		if err := tx.Stock.Upsert(context.Background(), &entity.StockLevel{ProductID: id, Quantity: 1, LastUpdated: time.Now()}); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	level, err := postgres.NewStockRepository(pool).Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 5, level.Quantity)
}

func TestDuplicateIdempotencyKey(t *testing.T) {
	pool := testPool(t)
	repo := postgres.NewSaleRepository(pool)
	ctx := context.Background()
	sale := func() *entity.Sale {
		return &entity.Sale{ID: uuid.New().String(), Date: time.Now(), Total: decimal.Zero, Status: entity.SaleStatusCompleted, IdempotencyKey: "k-1"}
	}
	require.NoError(t, repo.Create(ctx, sale()))
	assert.ErrorIs(t, repo.Create(ctx, sale()), domain.ErrDuplicate)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	pool := testPool(t)
	id := createProduct(t, pool, "Maçã", 5)

	uc := sales.NewSaleUseCase(
		postgres.NewTxRunner(pool, 2*time.Second),
		postgres.NewProductRepository(pool),
		postgres.NewClientRepository(pool),
		postgres.NewSaleRepository(pool),
		nil, nil, nil,
		sales.Config{Timeout: 10 * time.Second, MaxAttempts: 5},
	)

	const buyers = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RegisterSale(context.Background(), dto.CreateSaleRequest{
				Items: []dto.SaleItemRequest{{ProductID: id, Quantity: 1, UnitPrice: decimal.NewFromInt(2)}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				refused++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, buyers-5, refused)
	level, err := postgres.NewStockRepository(pool).Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, level.Quantity)

	list, err := postgres.NewSaleRepository(pool).List(context.Background(), 100, 0)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}
