package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación de SupplierRepository sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, name, COALESCE(contact_name, ''), COALESCE(phone, ''), COALESCE(email, ''), created_at, updated_at`

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.ContactName, &s.Phone, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (id, name, contact_name, phone, email, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7)`,
		s.ID, s.Name, s.ContactName, s.Phone, s.Email, s.CreatedAt, s.UpdatedAt,
	)
	return mapError("insert supplier", err)
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get supplier", err)
	}
	return s, nil
}

func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapError("list suppliers", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, mapError("scan supplier", err)
		}
		list = append(list, s)
	}
	return list, mapError("list suppliers", rows.Err())
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE suppliers SET name = $2, contact_name = NULLIF($3, ''), phone = NULLIF($4, ''), email = NULLIF($5, ''), updated_at = $6
		WHERE id = $1`,
		s.ID, s.Name, s.ContactName, s.Phone, s.Email, s.UpdatedAt,
	)
	if err != nil {
		return mapError("update supplier", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return mapError("delete supplier", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
