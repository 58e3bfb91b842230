// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"database/sql"
	"strconv"
	"time"
)

// Dialect identifies which SQL flavor a backend speaks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Result reports the outcome of a mutation. InsertedID is only valid for
// statements recognized as row insertions.
type Result struct {
	InsertedID   sql.NullInt64
	RowsAffected int64
}

// Store is the backend-neutral query interface. Statement text uses `?` as
// the positional placeholder regardless of backend; each implementation
// rewrites it to its native syntax before execution.
type Store interface {
	// Query runs a read statement and returns all matching rows.
	Query(ctx context.Context, stmt string, args ...any) ([]Row, error)

	// QueryOne runs a read statement expected to match at most one row.
	// Returns (nil, nil) when no row matches.
	QueryOne(ctx context.Context, stmt string, args ...any) (Row, error)

	// Exec runs a mutation and returns the inserted id (for insertions)
	// and the number of rows affected.
	Exec(ctx context.Context, stmt string, args ...any) (Result, error)

	Close() error
}

// Index describes one index on a table.
type Index struct {
	Name    string
	Unique  bool
	Columns []string
}

// Inspector exposes the schema introspection the migrator needs to decide
// which shape of the vote table is live.
type Inspector interface {
	Dialect() Dialect
	TableExists(ctx context.Context, table string) (bool, error)
	TableColumns(ctx context.Context, table string) ([]string, error)
	Indexes(ctx context.Context, table string) ([]Index, error)
}

// Backend is a Store whose schema can be inspected.
type Backend interface {
	Store
	Inspector
}

// Int reads a column as int64, tolerating the numeric representations the
// drivers hand back (Postgres returns SUM() as a numeric string).
func (r Row) Int(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// String reads a column as a string. Nil columns come back empty.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Bool reads a column as a bool. SQLite reports flags as 0/1 integers.
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	default:
		return r.Int(col) != 0
	}
}

// Time reads a column as a timestamp, parsing the text form SQLite stores.
func (r Row) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}
	}
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// collectRows drains a *sql.Rows into the neutral Row shape.
func collectRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		dests := make([]any, len(cols))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
