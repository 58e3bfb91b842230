// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/danielhkuo/radio-station/models"
	"github.com/danielhkuo/radio-station/storage"
	"github.com/danielhkuo/radio-station/testutil"
)

var testMeta = Meta{SessionID: "sess-1", NetworkAddress: "203.0.113.9"}

func TestSubmitValidation(t *testing.T) {
	ledger := NewLedger(testutil.NewTestStore(t))
	ctx := context.Background()

	tests := []struct {
		name     string
		songID   string
		fp       string
		polarity int
		wantErr  error
	}{
		{"zero polarity", "s1", "f1", 0, ErrInvalidPolarity},
		{"polarity out of range", "s1", "f1", 2, ErrInvalidPolarity},
		{"negative out of range", "s1", "f1", -5, ErrInvalidPolarity},
		{"empty song id", "", "f1", 1, ErrEmptySongID},
		{"empty fingerprint", "s1", "", 1, ErrEmptyFingerprint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Submit(ctx, tt.songID, tt.fp, tt.polarity, testMeta)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSubmitScenario(t *testing.T) {
	ledger := NewLedger(testutil.NewTestStore(t))
	ctx := context.Background()

	// First caller votes up
	tally, err := ledger.Submit(ctx, "s1", "f1", models.PolarityUp, testMeta)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	assertTally(t, tally, 1, 0, 1)

	// Same caller flips to down: still exactly one record, no double count
	tally, err = ledger.Submit(ctx, "s1", "f1", models.PolarityDown, testMeta)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	assertTally(t, tally, 0, 1, -1)

	// A second caller votes up
	tally, err = ledger.Submit(ctx, "s1", "f2", models.PolarityUp, testMeta)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	assertTally(t, tally, 1, 1, 1)
}

func TestSubmitIdempotent(t *testing.T) {
	store := testutil.NewTestStore(t)
	ledger := NewLedger(store)
	ctx := context.Background()

	first, err := ledger.Submit(ctx, "s1", "f1", models.PolarityUp, testMeta)
	if err != nil {
		t.Fatalf("First submit failed: %v", err)
	}

	second, err := ledger.Submit(ctx, "s1", "f1", models.PolarityUp, testMeta)
	if err != nil {
		t.Fatalf("Repeat submit failed: %v", err)
	}

	if first != second {
		t.Errorf("Repeat submit changed the tally: %+v then %+v", first, second)
	}
	if total := second.Upvotes + second.Downvotes; total != 1 {
		t.Errorf("Expected 1 total vote after repeat submit, got %d", total)
	}

	row, err := store.QueryOne(ctx, `SELECT COUNT(*) AS n FROM vote WHERE song_id = ?`, "s1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if row.Int("n") != 1 {
		t.Errorf("Expected exactly one record, got %d", row.Int("n"))
	}
}

func TestSubmitFlipUpdatesInPlace(t *testing.T) {
	store := testutil.NewTestStore(t)
	ledger := NewLedger(store)
	ctx := context.Background()

	if _, err := ledger.Submit(ctx, "s1", "f1", models.PolarityUp, testMeta); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	flipped := Meta{SessionID: "sess-2", NetworkAddress: "198.51.100.7"}
	tally, err := ledger.Submit(ctx, "s1", "f1", models.PolarityDown, flipped)
	if err != nil {
		t.Fatalf("Flip failed: %v", err)
	}
	assertTally(t, tally, 0, 1, -1)

	row, err := store.QueryOne(ctx, `
		SELECT COUNT(*) AS n FROM vote WHERE song_id = ? AND voter_fingerprint = ?
	`, "s1", "f1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if row.Int("n") != 1 {
		t.Fatalf("Expected one record after flip, got %d", row.Int("n"))
	}

	// Audit metadata follows the latest vote
	rec, err := store.QueryOne(ctx, `
		SELECT session_id, network_address FROM vote WHERE song_id = ? AND voter_fingerprint = ?
	`, "s1", "f1")
	if err != nil {
		t.Fatalf("QueryOne failed: %v", err)
	}
	if rec.String("session_id") != "sess-2" || rec.String("network_address") != "198.51.100.7" {
		t.Errorf("Expected audit metadata to be refreshed on flip, got %v", rec)
	}
}

func TestManyDistinctVoters(t *testing.T) {
	ledger := NewLedger(testutil.NewTestStore(t))
	ctx := context.Background()

	const n = 25
	var last models.Tally
	for i := 0; i < n; i++ {
		var err error
		last, err = ledger.Submit(ctx, "s1", fmt.Sprintf("fp-%02d", i), models.PolarityUp, testMeta)
		if err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}

	if last.Upvotes != n || last.Downvotes != 0 {
		t.Errorf("Expected %d upvotes and 0 downvotes, got %+v", n, last)
	}
}

func TestVotesRoundTrip(t *testing.T) {
	ledger := NewLedger(testutil.NewTestStore(t))
	ctx := context.Background()

	submitted, err := ledger.Submit(ctx, "s1", "f1", models.PolarityDown, testMeta)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	read, err := ledger.Votes(ctx, "s1", "f1")
	if err != nil {
		t.Fatalf("Votes failed: %v", err)
	}
	if submitted != read {
		t.Errorf("Votes disagreed with Submit: %+v vs %+v", submitted, read)
	}
}

func TestVotesWithoutOwnVote(t *testing.T) {
	ledger := NewLedger(testutil.NewTestStore(t))
	ctx := context.Background()

	if _, err := ledger.Submit(ctx, "s1", "f1", models.PolarityUp, testMeta); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	tally, err := ledger.Votes(ctx, "s1", "someone-else")
	if err != nil {
		t.Fatalf("Votes failed: %v", err)
	}
	assertTally(t, tally, 1, 0, 0)

	if _, err := ledger.Votes(ctx, "", "f1"); !errors.Is(err, ErrEmptySongID) {
		t.Errorf("Expected ErrEmptySongID, got %v", err)
	}
}

// blindStore hides the existing record from the ledger's first lookup,
// reproducing the window where a concurrent request inserts between the
// lookup and the insert. The unique index then rejects the insert and the
// ledger must reconcile instead of failing.
type blindStore struct {
	storage.Store
	misses int
}

func (s *blindStore) QueryOne(ctx context.Context, stmt string, args ...any) (storage.Row, error) {
	if s.misses > 0 && strings.Contains(stmt, "SELECT id, polarity") {
		s.misses--
		return nil, nil
	}
	return s.Store.QueryOne(ctx, stmt, args...)
}

func TestSubmitRecoversLostInsertRace(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()

	// The "concurrent" request's record is already in place.
	testutil.SeedVote(t, store, "s1", "f1", models.PolarityUp)

	t.Run("same polarity becomes a no-op", func(t *testing.T) {
		ledger := NewLedger(&blindStore{Store: store, misses: 1})
		tally, err := ledger.Submit(ctx, "s1", "f1", models.PolarityUp, testMeta)
		if err != nil {
			t.Fatalf("Expected constraint conflict to be recovered, got %v", err)
		}
		assertTally(t, tally, 1, 0, 1)
	})

	t.Run("different polarity becomes an update", func(t *testing.T) {
		ledger := NewLedger(&blindStore{Store: store, misses: 1})
		tally, err := ledger.Submit(ctx, "s1", "f1", models.PolarityDown, testMeta)
		if err != nil {
			t.Fatalf("Expected constraint conflict to be recovered, got %v", err)
		}
		assertTally(t, tally, 0, 1, -1)
	})
}

func assertTally(t *testing.T, tally models.Tally, up, down, mine int) {
	t.Helper()
	if tally.Upvotes != up || tally.Downvotes != down || tally.MyVote != mine {
		t.Errorf("Expected tally {up:%d down:%d my:%d}, got %+v", up, down, mine, tally)
	}
}
