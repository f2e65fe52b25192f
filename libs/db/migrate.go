package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
)

// Migrate applies every *.sql file of fsys, in lexical order, that has not yet
// been recorded for scope in schema_migrations. Each file runs in its own
// transaction under a scope-wide advisory lock so concurrent replicas apply it once.
func Migrate(ctx context.Context, pool *Pool, scope string, fsys fs.FS) ([]string, error) {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			scope TEXT NOT NULL,
			version TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (scope, version)
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		ok, err := applyMigration(ctx, pool, scope, fsys, name)
		if err != nil {
			return applied, fmt.Errorf("migration %s/%s: %w", scope, name, err)
		}
		if ok {
			applied = append(applied, name)
		}
	}
	return applied, nil
}

func applyMigration(ctx context.Context, pool *Pool, scope string, fsys fs.FS, name string) (bool, error) {
	body, err := fs.ReadFile(fsys, name)
	if err != nil {
		return false, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, scope); err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE scope = $1 AND version = $2)
	`, scope, name).Scan(&exists); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO schema_migrations (scope, version) VALUES ($1, $2)
	`, scope, name); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}
