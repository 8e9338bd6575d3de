package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors mapped to HTTP statuses by the API layer.
var (
	// ErrNotFound means the target row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoFields means a patch carried nothing to update.
	ErrNoFields = errors.New("no fields to update")
)

// IsConflict reports whether err is a uniqueness violation from either backend.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// rebind converts SQLite-style ? placeholders to $1, $2, ... for Postgres.
// Queries are written once in the ? dialect and rebound per backend.
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryAll runs a parameterized query and scans every row with scan.
func queryAll[T any](ctx context.Context, db *DB, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryOne runs a parameterized query expected to match at most one row.
// A miss is reported as ErrNotFound.
func queryOne[T any](ctx context.Context, db *DB, scan func(rowScanner) (T, error), query string, args ...any) (*T, error) {
	v, err := scan(db.QueryRowContext(ctx, db.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// queryRun executes a parameterized statement and returns the affected row count.
func queryRun(ctx context.Context, db *DB, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, db.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insertReturning executes an INSERT ... RETURNING id and returns the new id.
// Both modernc SQLite and pgx support the RETURNING clause.
func insertReturning(ctx context.Context, db *DB, query string, args ...any) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, db.rebind(query), args...).Scan(&id)
	return id, err
}
