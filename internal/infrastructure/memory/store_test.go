package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, s *Store, id, name string) {
	t.Helper()
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: name, Price: decimal.NewFromInt(1), Status: entity.ProductStatusActive,
	}))
}

func TestRun_RollbackDiscardsAllWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newProduct(t, s, "p1", "Arroz")
	require.NoError(t, s.Stock().Upsert(ctx, &entity.StockLevel{ProductID: "p1", Quantity: 5}))

	boom := errors.New("boom")
	err := s.Run(ctx, func(tx ports.TxRepositories) error {
		if err := tx.Stock.Upsert(ctx, &entity.StockLevel{ProductID: "p1", Quantity: 1}); err != nil {
			return err
		}
		if err := tx.Sales.Create(ctx, &entity.Sale{ID: "s1", Items: []entity.SaleItem{{ProductID: "p1", Quantity: 4}}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	level, err := s.Stock().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, level.Quantity)
	detail, err := s.Sales().GetDetail(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestRun_CommitPublishesAtOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newProduct(t, s, "p1", "Arroz")

	err := s.Run(ctx, func(tx ports.TxRepositories) error {
		if err := tx.Stock.Upsert(ctx, &entity.StockLevel{ProductID: "p1", Quantity: 7}); err != nil {
			return err
		}
		// Fuera de la tx todavía no se ve.
		level, err := s.Stock().Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 0, level.Quantity)
		return nil
	})
	require.NoError(t, err)

	level, err := s.Stock().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, level.Quantity)
}

func TestRun_DeadlineIsTimeout(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	err := s.Run(ctx, func(ports.TxRepositories) error { return nil })
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.True(t, domain.IsRetryable(err))
}

func TestStock_LockForUpdateCreatesMissingRows(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newProduct(t, s, "p1", "Arroz")

	var got map[string]int
	require.NoError(t, s.Run(ctx, func(tx ports.TxRepositories) error {
		var err error
		got, err = tx.Stock.LockForUpdate(ctx, []string{"p1"})
		return err
	}))
	assert.Equal(t, map[string]int{"p1": 0}, got)

	err := s.Run(ctx, func(tx ports.TxRepositories) error {
		_, err := tx.Stock.LockForUpdate(ctx, []string{"missing"})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStock_UpsertRejectsNegative(t *testing.T) {
	s := NewStore()
	newProduct(t, s, "p1", "Arroz")
	err := s.Stock().Upsert(context.Background(), &entity.StockLevel{ProductID: "p1", Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestProductDelete_KeepsSaleHistory(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newProduct(t, s, "p1", "Arroz")
	require.NoError(t, s.Stock().Upsert(ctx, &entity.StockLevel{ProductID: "p1", Quantity: 3}))
	require.NoError(t, s.Sales().Create(ctx, &entity.Sale{
		ID: "s1", Date: time.Now(), Status: entity.SaleStatusCompleted,
		Items: []entity.SaleItem{{ID: "i1", SaleID: "s1", ProductID: "p1", ProductName: "Arroz", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	}))

	require.NoError(t, s.Products().Delete(ctx, "p1"))

	detail, err := s.Sales().GetDetail(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "", detail.Items[0].ProductID)
	assert.Equal(t, "Arroz", detail.Items[0].ProductName)

	list, err := s.Stock().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, s.Products().Delete(ctx, "p1"), domain.ErrNotFound)
}

func TestSaleDetail_UsesCurrentProductName(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newProduct(t, s, "p1", "Arroz")
	require.NoError(t, s.Sales().Create(ctx, &entity.Sale{
		ID: "s1", Items: []entity.SaleItem{{ID: "i1", ProductID: "p1", ProductName: "Arroz", Quantity: 2}},
	}))
	require.NoError(t, s.Products().Update(ctx, &entity.Product{ID: "p1", Name: "Arroz 5kg", Status: entity.ProductStatusActive}))

	detail, err := s.Sales().GetDetail(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Arroz 5kg", detail.Items[0].ProductName)
	assert.Equal(t, 1, detail.ItemCount)
}

func TestSale_DuplicateIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newProduct(t, s, "p1", "Arroz")
	sale := func(id string) *entity.Sale {
		return &entity.Sale{ID: id, IdempotencyKey: "k1", Items: []entity.SaleItem{{ProductID: "p1", Quantity: 1}}}
	}
	require.NoError(t, s.Sales().Create(ctx, sale("s1")))
	assert.ErrorIs(t, s.Sales().Create(ctx, sale("s2")), domain.ErrDuplicate)

	got, err := s.Sales().GetByIdempotencyKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
}

func TestClient_CPFUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: "c1", Name: "Ana", CPF: "123"}))
	assert.ErrorIs(t, s.Clients().Create(ctx, &entity.Client{ID: "c2", Name: "Bruno", CPF: "123"}), domain.ErrDuplicate)
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: "c3", Name: "Carla"}))
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: "c4", Name: "Davi"}))
}

func TestSeed_OnlyOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Seed(ctx, now))
	require.NoError(t, s.Seed(ctx, now))

	n, err := s.Dashboard().CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	inStock, err := s.Dashboard().CountProductsInStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, inStock)
	clients, err := s.Dashboard().CountClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, clients)
}
