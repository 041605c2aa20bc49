package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/gelp-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT FOR UPDATE).
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout > 0 acota la espera por filas bloqueadas;
// al vencer, la transacción falla con domain.ErrConflict.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Cualquier error de fn provoca Rollback; ninguna escritura parcial queda visible.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.TxRepositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if r.lockTimeout > 0 {
		// SET LOCAL no acepta parámetros.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return mapError("set lock_timeout", err)
		}
	}

	repos := ports.TxRepositories{
		Products:     NewProductRepository(tx),
		Clients:      NewClientRepository(tx),
		Stock:        NewStockRepository(tx),
		StockEntries: NewStockEntryRepository(tx),
		Sales:        NewSaleRepository(tx),
	}
	if err := fn(repos); err != nil {
		return mapError("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}
