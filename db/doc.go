// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db bootstraps and migrates the vote table.

# Migration

The Migrator runs once at startup against whichever backend was selected:

	mig := db.NewMigrator(store)
	if err := mig.Run(ctx); err != nil {
		slog.Warn("continuing with unmigrated schema", "error", err)
	}

Run inspects the live table and takes one of three paths:

  - Absent: create the current shape.
  - Legacy shape (no voter_fingerprint column, or vote uniqueness keyed on
    anything other than (song_id, voter_fingerprint), or not enforced at
    all): copy rows to a backup table, drop and recreate, restore with
    one survivor per (song_id, voter_fingerprint) group (highest id wins),
    drop the backup.
  - Missing auxiliary columns: additive ALTERs only.

Every path finishes by ensuring the lookup index on
(song_id, network_address) and the unique index on
(song_id, voter_fingerprint).

# Failure policy

A failed migration is logged in full but does not stop the server; votes
keep working without the uniqueness guarantee until the next successful run.
Ready() exposes this state for the readiness endpoint.
*/
package db
