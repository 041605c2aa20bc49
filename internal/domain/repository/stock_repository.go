package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gelp-api/internal/domain/entity"
)

// StockListItem fila de stock con el nombre del producto.
type StockListItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	LastUpdated time.Time
}

// StockRepository define el puerto para consultar/actualizar el stock por producto.
// LockForUpdate y Upsert deben usarse dentro de una transacción (TxRunner).
type StockRepository interface {
	// Get devuelve el nivel actual; cantidad 0 y LastUpdated cero si no hay fila.
	Get(ctx context.Context, productID string) (*entity.StockLevel, error)
	// LockForUpdate crea las filas faltantes en 0 y bloquea todas en el orden recibido.
	// Devuelve la cantidad comprometida de cada producto.
	LockForUpdate(ctx context.Context, productIDs []string) (map[string]int, error)
	Upsert(ctx context.Context, level *entity.StockLevel) error
	// List devuelve todas las filas de stock ordenadas por nombre de producto.
	List(ctx context.Context) ([]StockListItem, error)
}
