package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect selects the SQL flavour of a store.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

const (
	mysqlDuplicateEntry     = 1062
	postgresUniqueViolation = "23505"
)

// ParseDialect validates a configured driver name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(s)); d {
	case DialectMySQL, DialectPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", s)
	}
}

func (d Dialect) driverName() (string, error) {
	switch d {
	case DialectMySQL:
		return "mysql", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", string(d))
	}
}

// rebind rewrites ? placeholders to $N for PostgreSQL. Queries must not contain literal '?'.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation reports whether err is a unique-constraint failure from either driver.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolation
	}
	return false
}
