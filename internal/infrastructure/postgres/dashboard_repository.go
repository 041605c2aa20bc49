package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo conteos de solo lectura. Cada método es una consulta independiente sobre el pool.
type DashboardRepo struct {
	q Querier
}

func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

func (r *DashboardRepo) count(ctx context.Context, op, sql string, args ...any) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, mapError(op, err)
	}
	return n, nil
}

func (r *DashboardRepo) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "count products", `SELECT COUNT(*) FROM products`)
}

func (r *DashboardRepo) CountProductsInStock(ctx context.Context) (int, error) {
	return r.count(ctx, "count products in stock", `SELECT COUNT(*) FROM stock WHERE quantity > 0`)
}

func (r *DashboardRepo) CountClients(ctx context.Context) (int, error) {
	return r.count(ctx, "count clients", `SELECT COUNT(*) FROM clients`)
}

func (r *DashboardRepo) CountSalesBetween(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx, "count sales", `SELECT COUNT(*) FROM sales WHERE date >= $1 AND date < $2`, start, end)
}
