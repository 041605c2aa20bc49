package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/application/usecase"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_CreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	categories := usecase.NewCategoryUseCase(store.Categories())
	products := usecase.NewProductUseCase(store.Products(), store.Categories())

	cat, err := categories.Create(ctx, dto.CategoryRequest{Name: "Frutas"})
	require.NoError(t, err)

	p, err := products.Create(ctx, dto.CreateProductRequest{Name: " Maçã ", Price: decimal.RequireFromString("5.555"), CategoryID: cat.ID})
	require.NoError(t, err)
	assert.Equal(t, "Maçã", p.Name)
	assert.Equal(t, entity.ProductStatusActive, p.Status)
	assert.Equal(t, "5.56", p.Price.StringFixed(2))

	_, err = products.Create(ctx, dto.CreateProductRequest{Name: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = products.Create(ctx, dto.CreateProductRequest{Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = products.Create(ctx, dto.CreateProductRequest{Name: "X", Status: "ativo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = products.Create(ctx, dto.CreateProductRequest{Name: "X", CategoryID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := products.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Frutas", list.Items[0].CategoryName)
	assert.Equal(t, dto.DefaultPageLimit, list.Page.Limit)
}

func TestProduct_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := usecase.NewProductUseCase(store.Products(), store.Categories())
	p, err := products.Create(ctx, dto.CreateProductRequest{Name: "Leite", Price: decimal.NewFromInt(4)})
	require.NoError(t, err)

	inactive := entity.ProductStatusInactive
	out, err := products.Update(ctx, p.ID, dto.UpdateProductRequest{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Leite", out.Name)
	assert.Equal(t, inactive, out.Status)

	_, err = products.Update(ctx, "nope", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = products.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, products.Delete(ctx, "nope"), domain.ErrNotFound)
}

func TestCategory_DeleteDetachesProducts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	categories := usecase.NewCategoryUseCase(store.Categories())
	products := usecase.NewProductUseCase(store.Products(), store.Categories())

	cat, err := categories.Create(ctx, dto.CategoryRequest{Name: "Padaria"})
	require.NoError(t, err)
	p, err := products.Create(ctx, dto.CreateProductRequest{Name: "Pão", CategoryID: cat.ID})
	require.NoError(t, err)

	require.NoError(t, categories.Delete(ctx, cat.ID))
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
	_, err = categories.GetByID(ctx, cat.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_CPFMustBeUnique(t *testing.T) {
	ctx := context.Background()
	clients := usecase.NewClientUseCase(memory.NewStore().Clients())

	ana, err := clients.Create(ctx, dto.ClientRequest{Name: "Ana Paula", CPF: "123.456.789-00"})
	require.NoError(t, err)
	_, err = clients.Create(ctx, dto.ClientRequest{Name: "Outra", CPF: "123.456.789-00"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	bruno, err := clients.Create(ctx, dto.ClientRequest{Name: "Bruno Costa"})
	require.NoError(t, err)
	_, err = clients.Update(ctx, bruno.ID, dto.ClientRequest{Name: "Bruno Costa", CPF: ana.CPF})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = clients.Update(ctx, ana.ID, dto.ClientRequest{Name: "Ana P.", CPF: ana.CPF})
	require.NoError(t, err)

	_, err = clients.Create(ctx, dto.ClientRequest{Name: "Sem email", Email: "invalido"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = clients.Create(ctx, dto.ClientRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSupplier_CRUD(t *testing.T) {
	ctx := context.Background()
	suppliers := usecase.NewSupplierUseCase(memory.NewStore().Suppliers())

	s, err := suppliers.Create(ctx, dto.SupplierRequest{Name: "Fazenda Verde", ContactName: "Jorge"})
	require.NoError(t, err)
	s, err = suppliers.Update(ctx, s.ID, dto.SupplierRequest{Name: "Fazenda Verde Ltda"})
	require.NoError(t, err)
	assert.Equal(t, "Fazenda Verde Ltda", s.Name)
	assert.Empty(t, s.ContactName)

	list, err := suppliers.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, suppliers.Delete(ctx, s.ID))
	_, err = suppliers.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
