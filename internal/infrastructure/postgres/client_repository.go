package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository sobre PostgreSQL.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `id, name, COALESCE(cpf, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(address, ''), created_at, updated_at`

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	if err := row.Scan(&c.ID, &c.Name, &c.CPF, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create ErrDuplicate si el CPF ya está registrado.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO clients (id, name, cpf, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)`,
		c.ID, c.Name, c.CPF, c.Email, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt,
	)
	return mapError("insert client", err)
}

func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get client", err)
	}
	return c, nil
}

func (r *ClientRepo) GetByCPF(ctx context.Context, cpf string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE cpf = $1`, cpf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get client by cpf", err)
	}
	return c, nil
}

func (r *ClientRepo) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	rows, err := r.q.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapError("list clients", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, mapError("scan client", err)
		}
		list = append(list, c)
	}
	return list, mapError("list clients", rows.Err())
}

func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE clients SET name = $2, cpf = NULLIF($3, ''), email = NULLIF($4, ''), phone = NULLIF($5, ''),
			address = NULLIF($6, ''), updated_at = $7
		WHERE id = $1`,
		c.ID, c.Name, c.CPF, c.Email, c.Phone, c.Address, c.UpdatedAt,
	)
	if err != nil {
		return mapError("update client", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete las ventas del cliente se conservan como ventas de mostrador (ON DELETE SET NULL).
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return mapError("delete client", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
