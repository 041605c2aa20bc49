package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto. Sin fila = cantidad 0.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockLevel, error) {
	var (
		s           = entity.StockLevel{ProductID: productID}
		lastUpdated *time.Time
	)
	err := r.q.QueryRow(ctx, `SELECT quantity, last_updated FROM stock WHERE product_id = $1`, productID).
		Scan(&s.Quantity, &lastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &s, nil
		}
		return nil, mapError("get stock", err)
	}
	if lastUpdated != nil {
		s.LastUpdated = *lastUpdated
	}
	return &s, nil
}

// LockForUpdate crea en 0 las filas faltantes y bloquea (SELECT FOR UPDATE) las de todos los productos.
// Los ids llegan ordenados; el ORDER BY mantiene el mismo orden de adquisición entre transacciones.
func (r *StockRepo) LockForUpdate(ctx context.Context, productIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	if _, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, quantity)
		SELECT id, 0 FROM unnest($1::text[]::uuid[]) AS id
		ORDER BY id
		ON CONFLICT (product_id) DO NOTHING`, productIDs); err != nil {
		return nil, mapError("ensure stock rows", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_id::text, quantity FROM stock
		WHERE product_id = ANY($1::text[]::uuid[])
		ORDER BY product_id
		FOR UPDATE`, productIDs)
	if err != nil {
		return nil, mapError("lock stock", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id  string
			qty int
		)
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, mapError("scan stock", err)
		}
		out[id] = qty
	}
	return out, mapError("lock stock", rows.Err())
}

// Upsert inserta o actualiza la cantidad en stock. CHECK (quantity >= 0) respalda el invariante.
func (r *StockRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, quantity, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, last_updated = EXCLUDED.last_updated`,
		level.ProductID, level.Quantity, level.LastUpdated,
	)
	return mapError("upsert stock", err)
}

// List filas de stock con nombre de producto, ordenadas por nombre.
func (r *StockRepo) List(ctx context.Context) ([]repository.StockListItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT s.product_id::text, p.name, s.quantity, s.last_updated
		FROM stock s
		JOIN products p ON p.id = s.product_id
		ORDER BY p.name, s.product_id`)
	if err != nil {
		return nil, mapError("list stock", err)
	}
	defer rows.Close()
	var list []repository.StockListItem
	for rows.Next() {
		var (
			it          repository.StockListItem
			lastUpdated *time.Time
		)
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &lastUpdated); err != nil {
			return nil, mapError("scan stock", err)
		}
		if lastUpdated != nil {
			it.LastUpdated = *lastUpdated
		}
		list = append(list, it)
	}
	return list, mapError("list stock", rows.Err())
}
