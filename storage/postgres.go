// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PooledStore is the production backend: PostgreSQL behind a bounded
// connection pool. Calls wait up to acquireTimeout for a free connection;
// hitting that limit surfaces as a transient, retryable error rather than a
// data error.
type PooledStore struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewPooled connects to PostgreSQL at url with at most maxConns concurrent
// connections.
func NewPooled(url string, maxConns int, acquireTimeout time.Duration) (*PooledStore, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if maxConns < 1 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &PooledStore{db: db, acquireTimeout: acquireTimeout}, nil
}

func (s *PooledStore) Dialect() Dialect { return DialectPostgres }

// withAcquireTimeout bounds the wait for a pooled connection. database/sql
// blocks until a connection frees up or the context expires.
func (s *PooledStore) withAcquireTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.acquireTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.acquireTimeout)
}

func (s *PooledStore) Query(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	translated, n := translatePostgres(stmt)
	if err := checkArgCount("query", stmt, n, len(args)); err != nil {
		return nil, err
	}

	ctx, cancel := s.withAcquireTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, translated, args...)
	if err != nil {
		return nil, classifyPostgres("query", err)
	}
	defer rows.Close()

	out, err := collectRows(rows)
	if err != nil {
		return nil, classifyPostgres("query", err)
	}
	return out, nil
}

func (s *PooledStore) QueryOne(ctx context.Context, stmt string, args ...any) (Row, error) {
	rows, err := s.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *PooledStore) Exec(ctx context.Context, stmt string, args ...any) (Result, error) {
	translated, n := translatePostgres(stmt)
	if err := checkArgCount("exec", stmt, n, len(args)); err != nil {
		return Result{}, err
	}

	ctx, cancel := s.withAcquireTimeout(ctx)
	defer cancel()

	// Postgres does not expose LastInsertId through database/sql, so
	// insertions are rewritten with a RETURNING clause to keep the Result
	// shape uniform across backends.
	if isValuesInsert(stmt) {
		var id int64
		err := s.db.QueryRowContext(ctx, translated+" RETURNING id", args...).Scan(&id)
		if err != nil {
			return Result{}, classifyPostgres("exec", err)
		}
		return Result{
			InsertedID:   sql.NullInt64{Int64: id, Valid: true},
			RowsAffected: 1,
		}, nil
	}

	res, err := s.db.ExecContext(ctx, translated, args...)
	if err != nil {
		return Result{}, classifyPostgres("exec", err)
	}

	out := Result{}
	out.RowsAffected, _ = res.RowsAffected()
	return out, nil
}

func (s *PooledStore) Close() error { return s.db.Close() }

func (s *PooledStore) TableExists(ctx context.Context, table string) (bool, error) {
	row, err := s.QueryOne(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = ?
	`, table)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (s *PooledStore) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.Query(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = ?
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.String("column_name"))
	}
	return cols, nil
}

func (s *PooledStore) Indexes(ctx context.Context, table string) ([]Index, error) {
	rows, err := s.Query(ctx, `
		SELECT i.relname AS index_name, ix.indisunique AS is_unique, a.attname AS column_name
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = ?
		ORDER BY i.relname, array_position(ix.indkey::int2[], a.attnum)
	`, table)
	if err != nil {
		return nil, err
	}

	var indexes []Index
	byName := make(map[string]int)
	for _, r := range rows {
		name := r.String("index_name")
		pos, ok := byName[name]
		if !ok {
			pos = len(indexes)
			byName[name] = pos
			indexes = append(indexes, Index{Name: name, Unique: r.Bool("is_unique")})
		}
		indexes[pos].Columns = append(indexes[pos].Columns, r.String("column_name"))
	}
	return indexes, nil
}

// classifyPostgres maps driver errors onto the storage error taxonomy. The
// Postgres message is preserved inside the wrapped error.
func classifyPostgres(op string, err error) error {
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		switch pqe.Code.Class() {
		case "23": // integrity constraint violation
			return newError(KindConstraint, op, err)
		case "08", "53", "57": // connection exception, insufficient resources, operator intervention
			return newError(KindTransient, op, err)
		}
		return newError(KindQuery, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return newError(KindTransient, op, err)
	}
	return newError(KindQuery, op, err)
}
