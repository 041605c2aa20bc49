package repository

import (
	"context"

	"github.com/jhoicas/gelp-api/internal/domain/entity"
)

// StockEntryRepository persiste entradas de mercadería.
type StockEntryRepository interface {
	Create(ctx context.Context, entry *entity.StockEntry) error
	// List filtra por producto si productID no es vacío; más recientes primero.
	List(ctx context.Context, productID string, limit, offset int) ([]*entity.StockEntry, error)
}
