// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/danielhkuo/radio-station/storage"
)

const (
	voteTable   = "vote"
	backupTable = "vote_backup"
)

// Migrator bootstraps the vote table and repairs older generations of its
// schema in place. Run is idempotent: on an already-current schema it only
// re-ensures the indexes.
type Migrator struct {
	store storage.Backend
	ready atomic.Bool
}

func NewMigrator(store storage.Backend) *Migrator {
	return &Migrator{store: store}
}

// Ready reports whether the last Run completed cleanly. Until it has, the
// uniqueness constraint behind double-vote protection may not hold.
func (m *Migrator) Ready() bool { return m.ready.Load() }

// Run executes the migration state machine. A failure is logged in full and
// returned, but callers are expected to keep the process alive: serving with
// a degraded schema beats not serving, and the next restart retries.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.run(ctx); err != nil {
		slog.Error("vote table migration failed; double-vote enforcement may be degraded until the next successful run",
			"error", err)
		m.ready.Store(false)
		return fmt.Errorf("vote table migration: %w", err)
	}

	m.ready.Store(true)
	return nil
}

func (m *Migrator) run(ctx context.Context) error {
	exists, err := m.store.TableExists(ctx, voteTable)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if !exists {
		slog.Info("creating vote table")
		if _, err := m.store.Exec(ctx, createVoteTable(m.store.Dialect())); err != nil {
			return fmt.Errorf("failed to create vote table: %w", err)
		}
		return m.ensureIndexes(ctx)
	}

	cols, err := m.store.TableColumns(ctx, voteTable)
	if err != nil {
		return fmt.Errorf("failed to inspect vote table columns: %w", err)
	}
	hasFingerprint := slices.Contains(cols, "voter_fingerprint")

	indexes, err := m.store.Indexes(ctx, voteTable)
	if err != nil {
		return fmt.Errorf("failed to inspect vote table indexes: %w", err)
	}
	hasCurrentUnique, hasStaleUnique := classifyUniqueIndexes(indexes)

	switch {
	case !hasFingerprint || hasStaleUnique || !hasCurrentUnique:
		slog.Warn("vote table has a legacy shape, rebuilding",
			"has_fingerprint_column", hasFingerprint,
			"stale_unique_index", hasStaleUnique,
			"fingerprint_unique_index", hasCurrentUnique)
		if err := m.repair(ctx, cols, hasFingerprint); err != nil {
			return err
		}
	default:
		if err := m.addMissingColumns(ctx, cols); err != nil {
			return err
		}
	}

	return m.ensureIndexes(ctx)
}

// classifyUniqueIndexes splits the table's unique indexes into the current
// (song_id, voter_fingerprint) key and the earlier generations' keys:
// song_id alone, or (song_id, network_address). A table without the current
// key may hold duplicate (song_id, voter_fingerprint) rows — accumulated
// while a failed migration left uniqueness unenforced — so anything short of
// the current key routes through the repair path, which deduplicates before
// the unique index is recreated. Other unique indexes (the id primary key)
// are ignored.
func classifyUniqueIndexes(indexes []storage.Index) (hasCurrent, hasStale bool) {
	for _, idx := range indexes {
		if !idx.Unique {
			continue
		}
		switch {
		case sameColumns(idx.Columns, "song_id", "voter_fingerprint"):
			hasCurrent = true
		case sameColumns(idx.Columns, "song_id"),
			sameColumns(idx.Columns, "song_id", "network_address"):
			hasStale = true
		}
	}
	return hasCurrent, hasStale
}

func sameColumns(cols []string, want ...string) bool {
	return slices.Equal(cols, want)
}

// repair rebuilds a legacy vote table into the current shape without losing
// votes: copy everything into a backup table, recreate, re-populate, drop
// the backup. When the legacy table already carried fingerprints, duplicate
// (song_id, voter_fingerprint) groups are collapsed to the row with the
// highest id (last write wins); NULL-fingerprint rows are copied untouched
// and reconciled later.
func (m *Migrator) repair(ctx context.Context, legacyCols []string, hadFingerprint bool) error {
	// A backup left behind by a crashed earlier run would block the copy.
	if _, err := m.store.Exec(ctx, `DROP TABLE IF EXISTS `+backupTable); err != nil {
		return fmt.Errorf("failed to clear stale backup table: %w", err)
	}

	if _, err := m.store.Exec(ctx,
		`CREATE TABLE `+backupTable+` AS SELECT * FROM `+voteTable); err != nil {
		return fmt.Errorf("failed to back up vote table: %w", err)
	}

	if _, err := m.store.Exec(ctx, `DROP TABLE `+voteTable); err != nil {
		return fmt.Errorf("failed to drop legacy vote table: %w", err)
	}
	if _, err := m.store.Exec(ctx, createVoteTable(m.store.Dialect())); err != nil {
		return fmt.Errorf("failed to recreate vote table: %w", err)
	}

	// Only columns the legacy table actually had can be copied. Ids are
	// preserved so the max-id survivor rule stays meaningful afterwards.
	copied := make([]string, 0, len(voteColumns))
	for _, c := range voteColumns {
		if slices.Contains(legacyCols, c) {
			copied = append(copied, c)
		}
	}
	colList := strings.Join(copied, ", ")

	if hadFingerprint {
		if _, err := m.store.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (%s) SELECT %s FROM %s WHERE voter_fingerprint IS NULL`,
			voteTable, colList, colList, backupTable)); err != nil {
			return fmt.Errorf("failed to restore unfingerprinted votes: %w", err)
		}
		if _, err := m.store.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (%s)
			 SELECT %s FROM %s
			 WHERE id IN (
			     SELECT MAX(id) FROM %s
			     WHERE voter_fingerprint IS NOT NULL
			     GROUP BY song_id, voter_fingerprint
			 )`,
			voteTable, colList, colList, backupTable, backupTable)); err != nil {
			return fmt.Errorf("failed to restore deduplicated votes: %w", err)
		}
	} else {
		if _, err := m.store.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (%s) SELECT %s FROM %s`,
			voteTable, colList, colList, backupTable)); err != nil {
			return fmt.Errorf("failed to restore votes: %w", err)
		}
	}

	// Explicit ids bypass the sequence on Postgres; realign it so the next
	// insert does not collide.
	if m.store.Dialect() == storage.DialectPostgres {
		if _, err := m.store.Exec(ctx,
			`SELECT setval(pg_get_serial_sequence('vote', 'id'), COALESCE((SELECT MAX(id) FROM vote), 0) + 1, false)`); err != nil {
			return fmt.Errorf("failed to realign vote id sequence: %w", err)
		}
	}

	if _, err := m.store.Exec(ctx, `DROP TABLE `+backupTable); err != nil {
		return fmt.Errorf("failed to drop backup table: %w", err)
	}

	slog.Info("vote table rebuilt in current shape")
	return nil
}

// addMissingColumns back-fills auxiliary metadata columns onto an otherwise
// current table. No data movement.
func (m *Migrator) addMissingColumns(ctx context.Context, cols []string) error {
	for _, c := range auxColumns {
		if slices.Contains(cols, c) {
			continue
		}
		slog.Info("adding missing vote table column", "column", c)
		if _, err := m.store.Exec(ctx,
			fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s TEXT`, voteTable, c)); err != nil {
			return fmt.Errorf("failed to add column %s: %w", c, err)
		}
	}
	return nil
}

func (m *Migrator) ensureIndexes(ctx context.Context) error {
	for _, ddl := range voteIndexes {
		if _, err := m.store.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to ensure vote indexes: %w", err)
		}
	}
	return nil
}
