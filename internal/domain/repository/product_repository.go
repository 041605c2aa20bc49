package repository

import (
	"context"

	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductView producto con el nombre de su categoría (LEFT JOIN).
type ProductView struct {
	entity.Product
	CategoryName string
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs devuelve solo los productos encontrados, indexados por ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	List(ctx context.Context, limit, offset int) ([]*ProductView, error)
	// Delete elimina el producto y su fila de stock. Las líneas de venta conservan el nombre copiado.
	Delete(ctx context.Context, id string) error
}
