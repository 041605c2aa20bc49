package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `p.id, p.name, COALESCE(p.description, ''), p.price, p.cost, p.status,
	COALESCE(p.category_id::text, ''), p.created_at, p.updated_at`

func scanProduct(row pgx.Row, p *entity.Product, extra ...any) error {
	dest := []any{&p.ID, &p.Name, &p.Description, &p.Price, &p.Cost, &p.Status, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// Create persiste un nuevo producto. Cost inicia en 0 salvo que venga informado.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, name, description, price, cost, status, category_id, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, '')::uuid, $8, $9)`,
		product.ID, product.Name, product.Description, product.Price, product.Cost,
		product.Status, product.CategoryID, product.CreatedAt, product.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get product", err)
	}
	return &p, nil
}

func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = ANY($1::text[]::uuid[])`, ids)
	if err != nil {
		return nil, mapError("get products", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, mapError("scan product", err)
		}
		out[p.ID] = &p
	}
	return out, mapError("get products", rows.Err())
}

// Update actualiza datos de catálogo. No modifica Cost (se maneja vía entradas de stock).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, description = NULLIF($3, ''), price = $4, status = $5,
			category_id = NULLIF($6, '')::uuid, updated_at = $7
		WHERE id = $1`,
		product.ID, product.Name, product.Description, product.Price, product.Status,
		product.CategoryID, product.UpdatedAt,
	)
	if err != nil {
		return mapError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo del producto (usado por el libro de stock).
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET cost = $2, updated_at = now() WHERE id = $1`, productID, cost)
	return mapError("update product cost", err)
}

// List lista productos con el nombre de su categoría, ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*repository.ProductView, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+`, COALESCE(c.name, '')
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.name, p.id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()
	var list []*repository.ProductView
	for rows.Next() {
		var v repository.ProductView
		if err := scanProduct(rows, &v.Product, &v.CategoryName); err != nil {
			return nil, mapError("scan product", err)
		}
		list = append(list, &v)
	}
	return list, mapError("list products", rows.Err())
}

// Delete elimina un producto por ID; la fila de stock cae por ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
