// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/radio-station/cliparse"
	"github.com/danielhkuo/radio-station/db"
	"github.com/danielhkuo/radio-station/storage"
)

// NewTestStore opens a fresh in-memory embedded store with the current vote
// schema migrated in. Closed automatically when the test finishes.
func NewTestStore(t *testing.T) storage.Backend {
	t.Helper()

	store, err := storage.NewEmbedded(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := db.NewMigrator(store).Run(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: cliparse.DatabaseSQLite,
		DatabasePath: ":memory:",
		PoolSize:     4,
		PoolTimeout:  time.Second,
	}
}

// SeedVote inserts a vote record directly and returns its id.
func SeedVote(t *testing.T, store storage.Store, songID, fp string, polarity int) int64 {
	t.Helper()

	res, err := store.Exec(context.Background(), `
		INSERT INTO vote (song_id, session_id, network_address, voter_fingerprint, polarity, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, songID, "test-session", "203.0.113.9", fp, polarity, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to seed vote: %v", err)
	}
	if !res.InsertedID.Valid {
		t.Fatal("Seeded vote has no inserted id")
	}

	return res.InsertedID.Int64
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
