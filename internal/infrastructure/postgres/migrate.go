package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate aplica en orden los scripts de migrations/ que aún no figuran en schema_migrations.
// Cada script corre en su propia transacción.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return nil, mapError("crear schema_migrations", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		var exists bool
		if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&exists); err != nil {
			return applied, mapError("consultar schema_migrations", err)
		}
		if exists {
			continue
		}
		script, err := migrationFiles.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("leer %s: %w", name, err)
		}
		if err := applyMigration(ctx, pool, name, string(script)); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, name, script string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return mapError("begin migration", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, script); err != nil {
		return mapError("aplicar "+name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return mapError("registrar "+name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit migration", err)
	}
	return nil
}
