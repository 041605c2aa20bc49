package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación de CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const categoryColumns = `id, name, COALESCE(description, ''), created_at, updated_at`

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)`,
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	return mapError("insert category", err)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var c entity.Category
	err := r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get category", err)
	}
	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE categories SET name = $2, description = NULLIF($3, ''), updated_at = $4
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.UpdatedAt,
	)
	if err != nil {
		return mapError("update category", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) List(ctx context.Context, limit, offset int) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, mapError("scan category", err)
		}
		list = append(list, &c)
	}
	return list, mapError("list categories", rows.Err())
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError("delete category", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
