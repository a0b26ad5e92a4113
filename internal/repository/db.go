package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// NewDB opens a connection pool for the given dialect and DSN.
// A failed ping is logged, not returned, so the server can start before the database.
func NewDB(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	driver, err := dialect.driverName()
	if err != nil {
		return nil, err
	}

	if dialect == DialectMySQL {
		dsn, err = normalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		slog.Warn("database ping failed", "dialect", dialect, "error", err)
	}

	return db, nil
}

// normalizeMySQLDSN forces the options the repositories rely on: parseTime for DATETIME
// scanning, and clientFoundRows so an UPDATE that matches a row but changes nothing still
// reports one affected row.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}
