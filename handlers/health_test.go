// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/radio-station/db"
	"github.com/danielhkuo/radio-station/models"
	"github.com/danielhkuo/radio-station/storage"
	"github.com/danielhkuo/radio-station/testutil"
)

func TestHealth(t *testing.T) {
	store := testutil.NewTestStore(t)
	mig := db.NewMigrator(store)
	if err := mig.Run(context.Background()); err != nil {
		t.Fatalf("Migration failed: %v", err)
	}

	handler := NewHealthHandler(testutil.GetTestConfig(), mig)

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest("GET", "/health", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.HealthResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != "ok" {
		t.Errorf("Expected status ok, got %q", resp.Status)
	}
	if resp.Database != "sqlite" {
		t.Errorf("Expected sqlite database, got %q", resp.Database)
	}
}

func TestReadyReflectsMigrationState(t *testing.T) {
	store, err := storage.NewEmbedded(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mig := db.NewMigrator(store)
	handler := NewHealthHandler(testutil.GetTestConfig(), mig)

	// Before migration: not ready
	w := httptest.NewRecorder()
	handler.Ready(w, httptest.NewRequest("GET", "/ready", nil))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)

	var resp models.ReadyResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Ready {
		t.Error("Expected ready=false before migration")
	}

	if err := mig.Run(context.Background()); err != nil {
		t.Fatalf("Migration failed: %v", err)
	}

	// After a clean run: ready
	w = httptest.NewRecorder()
	handler.Ready(w, httptest.NewRequest("GET", "/ready", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	if !resp.Ready {
		t.Error("Expected ready=true after migration")
	}
}
