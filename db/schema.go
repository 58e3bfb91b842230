// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import "github.com/danielhkuo/radio-station/storage"

// voteColumns is the current shape of the vote table, in DDL order. The
// migrator copies the intersection of these with whatever a legacy table
// carried.
var voteColumns = []string{
	"id",
	"song_id",
	"session_id",
	"network_address",
	"voter_fingerprint",
	"polarity",
	"recorded_at",
}

// auxColumns are the non-authoritative metadata columns added after the
// fingerprint generation of the schema. They can be back-filled onto an
// otherwise current table with plain ALTERs.
var auxColumns = []string{"session_id", "network_address"}

const createVoteSQLite = `
CREATE TABLE vote (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    song_id TEXT NOT NULL,
    session_id TEXT,
    network_address TEXT,
    voter_fingerprint TEXT,
    polarity INTEGER NOT NULL CHECK (polarity IN (-1, 1)),
    recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const createVotePostgres = `
CREATE TABLE vote (
    id BIGSERIAL PRIMARY KEY,
    song_id TEXT NOT NULL,
    session_id TEXT,
    network_address TEXT,
    voter_fingerprint TEXT,
    polarity INTEGER NOT NULL CHECK (polarity IN (-1, 1)),
    recorded_at TIMESTAMP NOT NULL DEFAULT NOW()
)`

// voteIndexes are ensured after every migration path. The unique index on
// (song_id, voter_fingerprint) is what the vote ledger's upsert semantics
// depend on; rows with a NULL fingerprint are not constrained by it.
var voteIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_vote_song_addr ON vote(song_id, network_address)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_vote_song_fingerprint ON vote(song_id, voter_fingerprint)`,
}

func createVoteTable(d storage.Dialect) string {
	if d == storage.DialectPostgres {
		return createVotePostgres
	}
	return createVoteSQLite
}
