package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

var _ repository.StockEntryRepository = (*StockEntryRepo)(nil)

// StockEntryRepo entradas de mercadería sobre PostgreSQL.
type StockEntryRepo struct {
	q Querier
}

func NewStockEntryRepository(q Querier) *StockEntryRepo {
	return &StockEntryRepo{q: q}
}

func (r *StockEntryRepo) Create(ctx context.Context, e *entity.StockEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_entries (id, product_id, supplier_id, quantity, unit_cost, entry_date, expiry_date, lot_number, created_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, NULLIF($8, ''), $9)`,
		e.ID, e.ProductID, e.SupplierID, e.Quantity, e.UnitCost, e.EntryDate, e.ExpiryDate, e.LotNumber, e.CreatedAt,
	)
	return mapError("insert stock entry", err)
}

func (r *StockEntryRepo) List(ctx context.Context, productID string, limit, offset int) ([]*entity.StockEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id::text, COALESCE(supplier_id::text, ''), quantity, unit_cost, entry_date,
			expiry_date, COALESCE(lot_number, ''), created_at
		FROM stock_entries
		WHERE ($1 = '' OR product_id::text = $1)
		ORDER BY entry_date DESC, id
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, mapError("list stock entries", err)
	}
	defer rows.Close()
	var list []*entity.StockEntry
	for rows.Next() {
		var (
			e      entity.StockEntry
			expiry *time.Time
		)
		if err := rows.Scan(&e.ID, &e.ProductID, &e.SupplierID, &e.Quantity, &e.UnitCost, &e.EntryDate,
			&expiry, &e.LotNumber, &e.CreatedAt); err != nil {
			return nil, mapError("scan stock entry", err)
		}
		e.ExpiryDate = expiry
		list = append(list, &e)
	}
	return list, mapError("list stock entries", rows.Err())
}
