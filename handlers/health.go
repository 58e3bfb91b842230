// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/radio-station/cliparse"
	"github.com/danielhkuo/radio-station/db"
	"github.com/danielhkuo/radio-station/middleware"
	"github.com/danielhkuo/radio-station/models"
)

type HealthHandler struct {
	cfg      cliparse.Config
	migrator *db.Migrator
	started  time.Time
}

func NewHealthHandler(cfg cliparse.Config, migrator *db.Migrator) *HealthHandler {
	return &HealthHandler{cfg: cfg, migrator: migrator, started: time.Now()}
}

// Health handles GET /health (liveness)
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:   "ok",
		Started:  humanize.Time(h.started),
		Database: h.cfg.DatabaseType,
	}

	if h.cfg.DatabaseType == cliparse.DatabaseSQLite {
		if info, err := os.Stat(h.cfg.DatabasePath); err == nil {
			resp.DatabaseSize = humanize.Bytes(uint64(info.Size()))
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Ready handles GET /ready (readiness). Not ready until the schema migration
// has completed cleanly, since double-vote enforcement depends on it.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.migrator.Ready() {
		middleware.JSONResponse(w, http.StatusServiceUnavailable, models.ReadyResponse{Ready: false})
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ReadyResponse{Ready: true})
}
