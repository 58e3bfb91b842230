// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage provides the backend-neutral query layer the rest of the
server runs through.

# Backends

Two implementations of the Store interface:

  - EmbeddedStore: SQLite via modernc.org/sqlite for development. Single
    connection, fully serialized, supports :memory: for tests.
  - PooledStore: PostgreSQL via lib/pq for production. Bounded connection
    pool with a bounded wait for a free connection.

The backend is selected once at startup; nothing else in the codebase
branches on the database type.

# Neutral statements

All statement text uses `?` as the positional placeholder:

	row, err := store.QueryOne(ctx,
		`SELECT polarity FROM vote WHERE song_id = ? AND voter_fingerprint = ?`,
		songID, fp)

EmbeddedStore passes `?` through; PooledStore rewrites to $1..$N with a
single left-to-right scan that skips quoted string literals. A placeholder
count that disagrees with the argument count is a translation error and
fails immediately.

# Mutations

Exec returns a uniform Result for both backends. For VALUES-form inserts,
PooledStore appends a RETURNING clause so InsertedID is populated even
though lib/pq has no LastInsertId.

# Errors

Failures carry a Kind (query, constraint, transient, translation) checked
with IsConstraint / IsTransient / IsTranslation. The underlying driver error
is always wrapped, never swallowed.
*/
package storage
