// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/radio-station/models"
	"github.com/danielhkuo/radio-station/storage"
)

var (
	ErrInvalidPolarity  = errors.New("polarity must be +1 or -1")
	ErrEmptySongID      = errors.New("song id is required")
	ErrEmptyFingerprint = errors.New("voter fingerprint is required")
)

// Meta is auxiliary, non-authoritative vote metadata kept for audit. It
// plays no part in the one-vote-per-identity invariant.
type Meta struct {
	SessionID      string
	NetworkAddress string
}

// Ledger enforces "at most one active vote per identity per song". The
// unique index on (song_id, voter_fingerprint) is the authority; the ledger
// reads and writes through it and recovers when a concurrent request wins
// the insert race.
type Ledger struct {
	store storage.Store
}

func NewLedger(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// Submit records a vote. First vote inserts; a repeat with the same polarity
// is a no-op; a repeat with the opposite polarity flips the existing record
// in place. Votes are never deleted. Returns the refreshed tally.
func (l *Ledger) Submit(ctx context.Context, songID, fp string, polarity int, meta Meta) (models.Tally, error) {
	if polarity != models.PolarityUp && polarity != models.PolarityDown {
		return models.Tally{}, ErrInvalidPolarity
	}
	if songID == "" {
		return models.Tally{}, ErrEmptySongID
	}
	if fp == "" {
		return models.Tally{}, ErrEmptyFingerprint
	}

	existing, err := l.store.QueryOne(ctx,
		`SELECT id, polarity FROM vote WHERE song_id = ? AND voter_fingerprint = ?`,
		songID, fp)
	if err != nil {
		return models.Tally{}, fmt.Errorf("failed to look up existing vote: %w", err)
	}

	switch {
	case existing == nil:
		_, err := l.store.Exec(ctx, `
			INSERT INTO vote (song_id, session_id, network_address, voter_fingerprint, polarity, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, songID, meta.SessionID, meta.NetworkAddress, fp, polarity, time.Now().UTC())

		if err != nil {
			// The lookup and the insert are not one transaction. When two
			// identical requests race, the unique index rejects the loser;
			// that means "this identity already voted", not a failure.
			if storage.IsConstraint(err) {
				slog.Info("lost vote insert race, reconciling",
					"song_id", songID)
				if err := l.reconcile(ctx, songID, fp, polarity, meta); err != nil {
					return models.Tally{}, err
				}
				break
			}
			return models.Tally{}, fmt.Errorf("failed to insert vote: %w", err)
		}

	case existing.Int("polarity") == int64(polarity):
		// Idempotent: same identity, same polarity, nothing to do.

	default:
		if err := l.update(ctx, songID, fp, polarity, meta); err != nil {
			return models.Tally{}, err
		}
	}

	return l.tally(ctx, songID, fp)
}

// Votes returns the aggregate counts for a song and the caller's own vote.
// Computed fresh from storage on every call; vote state is never cached.
func (l *Ledger) Votes(ctx context.Context, songID, fp string) (models.Tally, error) {
	if songID == "" {
		return models.Tally{}, ErrEmptySongID
	}
	return l.tally(ctx, songID, fp)
}

// reconcile handles a lost insert race: re-read the row that beat us and
// flip it if its polarity differs from ours, otherwise leave it alone.
func (l *Ledger) reconcile(ctx context.Context, songID, fp string, polarity int, meta Meta) error {
	existing, err := l.store.QueryOne(ctx,
		`SELECT id, polarity FROM vote WHERE song_id = ? AND voter_fingerprint = ?`,
		songID, fp)
	if err != nil {
		return fmt.Errorf("failed to re-read vote after constraint conflict: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("vote insert rejected by unique index but no row found for song %q", songID)
	}
	if existing.Int("polarity") == int64(polarity) {
		return nil
	}
	return l.update(ctx, songID, fp, polarity, meta)
}

// update flips the polarity and refreshes the audit metadata in place.
// recorded_at is the creation timestamp and never changes.
func (l *Ledger) update(ctx context.Context, songID, fp string, polarity int, meta Meta) error {
	_, err := l.store.Exec(ctx, `
		UPDATE vote SET polarity = ?, session_id = ?, network_address = ?
		WHERE song_id = ? AND voter_fingerprint = ?
	`, polarity, meta.SessionID, meta.NetworkAddress, songID, fp)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	return nil
}

func (l *Ledger) tally(ctx context.Context, songID, fp string) (models.Tally, error) {
	counts, err := l.store.QueryOne(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN polarity = 1 THEN 1 ELSE 0 END), 0) AS upvotes,
			COALESCE(SUM(CASE WHEN polarity = -1 THEN 1 ELSE 0 END), 0) AS downvotes
		FROM vote WHERE song_id = ?
	`, songID)
	if err != nil {
		return models.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}

	t := models.Tally{
		Upvotes:   int(counts.Int("upvotes")),
		Downvotes: int(counts.Int("downvotes")),
	}

	if fp != "" {
		mine, err := l.store.QueryOne(ctx,
			`SELECT polarity FROM vote WHERE song_id = ? AND voter_fingerprint = ?`,
			songID, fp)
		if err != nil {
			return models.Tally{}, fmt.Errorf("failed to read caller's vote: %w", err)
		}
		if mine != nil {
			t.MyVote = int(mine.Int("polarity"))
		}
	}

	return t, nil
}
