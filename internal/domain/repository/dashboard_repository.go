package repository

import (
	"context"
	"time"
)

// DashboardRepository consultas de conteo para el panel principal (read-only).
type DashboardRepository interface {
	CountProducts(ctx context.Context) (int, error)
	// CountProductsInStock cuenta productos con quantity > 0.
	CountProductsInStock(ctx context.Context) (int, error)
	CountClients(ctx context.Context) (int, error)
	// CountSalesBetween cuenta ventas con fecha en [start, end).
	CountSalesBetween(ctx context.Context, start, end time.Time) (int, error)
}
