// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// EmbeddedStore is the single-process development backend, backed by a
// SQLite file (or :memory:). All access is serialized through one
// connection: calls block, never suspend, and there is exactly one writer.
type EmbeddedStore struct {
	db   *sql.DB
	path string
}

// NewEmbedded opens (creating if needed) the SQLite database at path.
// Pass ":memory:" for a throwaway in-memory database.
func NewEmbedded(path string) (*EmbeddedStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}

	// A single connection serializes every statement and keeps :memory:
	// databases from silently forking per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}

	return &EmbeddedStore{db: db, path: path}, nil
}

// Path returns the database file path the store was opened with.
func (s *EmbeddedStore) Path() string { return s.path }

func (s *EmbeddedStore) Dialect() Dialect { return DialectSQLite }

func (s *EmbeddedStore) Query(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	if err := checkArgCount("query", stmt, countPlaceholders(stmt), len(args)); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, classifySQLite("query", err)
	}
	defer rows.Close()

	out, err := collectRows(rows)
	if err != nil {
		return nil, classifySQLite("query", err)
	}
	return out, nil
}

func (s *EmbeddedStore) QueryOne(ctx context.Context, stmt string, args ...any) (Row, error) {
	rows, err := s.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *EmbeddedStore) Exec(ctx context.Context, stmt string, args ...any) (Result, error) {
	if err := checkArgCount("exec", stmt, countPlaceholders(stmt), len(args)); err != nil {
		return Result{}, err
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Result{}, classifySQLite("exec", err)
	}

	out := Result{}
	out.RowsAffected, _ = res.RowsAffected()
	if isValuesInsert(stmt) {
		if id, err := res.LastInsertId(); err == nil {
			out.InsertedID = sql.NullInt64{Int64: id, Valid: true}
		}
	}
	return out, nil
}

func (s *EmbeddedStore) Close() error { return s.db.Close() }

func (s *EmbeddedStore) TableExists(ctx context.Context, table string) (bool, error) {
	row, err := s.QueryOne(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (s *EmbeddedStore) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.Query(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.String("name"))
	}
	return cols, nil
}

func (s *EmbeddedStore) Indexes(ctx context.Context, table string) ([]Index, error) {
	rows, err := s.Query(ctx, `SELECT name, "unique" FROM pragma_index_list(?)`, table)
	if err != nil {
		return nil, err
	}

	indexes := make([]Index, 0, len(rows))
	for _, r := range rows {
		idx := Index{
			Name:   r.String("name"),
			Unique: r.Bool("unique"),
		}
		colRows, err := s.Query(ctx,
			`SELECT name FROM pragma_index_info(?) ORDER BY seqno`, idx.Name)
		if err != nil {
			return nil, err
		}
		for _, cr := range colRows {
			idx.Columns = append(idx.Columns, cr.String("name"))
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

// classifySQLite maps driver errors onto the storage error taxonomy. The
// SQLite message is preserved inside the wrapped error.
func classifySQLite(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return newError(KindConstraint, op, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return newError(KindTransient, op, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(KindTransient, op, err)
	}
	return newError(KindQuery, op, err)
}
