package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/gelp-api/pkg/config"
)

// NewPool crea un pool de conexiones PostgreSQL usando la configuración de la app.
// Si está definido DATABASE_URL se usa tal cual; si no, se construye el DSN desde DB_HOST, DB_PORT, etc.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = 25
	}
	if poolConfig.MinConns < 0 || poolConfig.MinConns > poolConfig.MaxConns {
		poolConfig.MinConns = 0
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Registrar codec para NUMERIC/DECIMAL -> shopspring/decimal (todas las conexiones del pool).
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, mapError("crear pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, mapError("ping DB", err)
	}
	return pool, nil
}
