package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("MySQL")
	require.NoError(t, err)
	assert.Equal(t, DialectMySQL, d)

	d, err = ParseDialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)

	_, err = ParseDialect("mongodb")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "UPDATE contacts SET name = ? WHERE id = ? AND owner_id = ?"

	assert.Equal(t, q, DialectMySQL.rebind(q))
	assert.Equal(t, "UPDATE contacts SET name = $1 WHERE id = $2 AND owner_id = $3", DialectPostgres.rebind(q))
}

func TestIsUniqueViolation_PlainError(t *testing.T) {
	assert.False(t, isUniqueViolation(errors.New("Duplicate entry")))
	assert.False(t, isUniqueViolation(nil))
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := normalizeMySQLDSN("root:password@tcp(127.0.0.1:3306)/contactbook")
	require.NoError(t, err)
	assert.True(t, strings.Contains(dsn, "parseTime=true"), dsn)
	assert.True(t, strings.Contains(dsn, "clientFoundRows=true"), dsn)

	_, err = normalizeMySQLDSN("::not a dsn")
	assert.Error(t, err)
}

func TestMigrate_UsesDialectDirectory(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), nil, DialectPostgres))
	assert.Equal(t, "migrations/postgres", gotDir)
}

func TestMigrate_PropagatesError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := Migrate(context.Background(), nil, DialectMySQL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, dir := range []string{"migrations/mysql", "migrations/postgres"} {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2, dir)
	}
}
