package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SaleSummary fila del listado de ventas.
type SaleSummary struct {
	ID         string
	Date       time.Time
	Total      decimal.Decimal
	Status     string
	ClientID   string
	ClientName string
	ItemCount  int
}

// SaleDetailItem línea con el nombre del producto resuelto al leer.
type SaleDetailItem struct {
	ProductID   string // vacío si el producto fue eliminado
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// SaleDetail cabecera más líneas.
type SaleDetail struct {
	SaleSummary
	Items []SaleDetailItem
}

// SaleRepository puerto de persistencia de ventas. Las ventas solo se crean y se leen.
type SaleRepository interface {
	// Create inserta cabecera y líneas. Debe ejecutarse dentro de la misma transacción que el stock.
	// Devuelve domain.ErrDuplicate si la clave de idempotencia ya existe.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByIdempotencyKey devuelve (nil, nil) si no existe.
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]SaleSummary, error)
	// GetDetail devuelve (nil, nil) si no existe.
	GetDetail(ctx context.Context, id string) (*SaleDetail, error)
}
