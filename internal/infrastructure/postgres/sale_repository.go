package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo cabeceras y líneas de venta sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Create debe usarse con la tx del libro de stock.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera y líneas. Clave de idempotencia repetida = domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, date, total, status, client_id, idempotency_key, request_hash)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, NULLIF($6, ''), NULLIF($7, ''))`,
		sale.ID, sale.Date, sale.Total, sale.Status, sale.ClientID, sale.IdempotencyKey, sale.RequestHash,
	)
	if err != nil {
		return mapError("insert sale", err)
	}
	for i, it := range sale.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, unit_price, line_no)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, sale.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, i+1,
		)
		if err != nil {
			return mapError("insert sale item", err)
		}
	}
	return nil
}

// GetByIdempotencyKey cabecera (sin líneas) de la venta con esa clave; (nil, nil) si no existe.
func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, `
		SELECT id, date, total, status, COALESCE(client_id::text, ''), idempotency_key, COALESCE(request_hash, '')
		FROM sales WHERE idempotency_key = $1`, key).
		Scan(&s.ID, &s.Date, &s.Total, &s.Status, &s.ClientID, &s.IdempotencyKey, &s.RequestHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get sale by idempotency key", err)
	}
	return &s, nil
}

const saleSummarySelect = `
	SELECT s.id, s.date, s.total, s.status, COALESCE(s.client_id::text, ''), COALESCE(c.name, ''),
		(SELECT COUNT(*) FROM sale_items i WHERE i.sale_id = s.id)
	FROM sales s
	LEFT JOIN clients c ON c.id = s.client_id`

func scanSummary(row pgx.Row, s *repository.SaleSummary) error {
	return row.Scan(&s.ID, &s.Date, &s.Total, &s.Status, &s.ClientID, &s.ClientName, &s.ItemCount)
}

// List más recientes primero.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]repository.SaleSummary, error) {
	rows, err := r.q.Query(ctx, saleSummarySelect+`
		ORDER BY s.date DESC, s.id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapError("list sales", err)
	}
	defer rows.Close()
	var list []repository.SaleSummary
	for rows.Next() {
		var s repository.SaleSummary
		if err := scanSummary(rows, &s); err != nil {
			return nil, mapError("scan sale", err)
		}
		list = append(list, s)
	}
	return list, mapError("list sales", rows.Err())
}

// GetDetail cabecera y líneas en orden de captura. El nombre vigente del producto tiene prioridad
// sobre la copia guardada al vender.
func (r *SaleRepo) GetDetail(ctx context.Context, id string) (*repository.SaleDetail, error) {
	var d repository.SaleDetail
	if err := scanSummary(r.q.QueryRow(ctx, saleSummarySelect+` WHERE s.id = $1`, id), &d.SaleSummary); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get sale", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(i.product_id::text, ''), COALESCE(p.name, i.product_name), i.quantity, i.unit_price
		FROM sale_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.sale_id = $1
		ORDER BY i.line_no`, id)
	if err != nil {
		return nil, mapError("get sale items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it repository.SaleDetailItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, mapError("scan sale item", err)
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("get sale items", err)
	}
	return &d, nil
}
