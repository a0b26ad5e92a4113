package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema migrations for dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "migrations/"+string(dialect)); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
