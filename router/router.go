// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/radio-station/cliparse"
	"github.com/danielhkuo/radio-station/db"
	"github.com/danielhkuo/radio-station/handlers"
	"github.com/danielhkuo/radio-station/middleware"
	"github.com/danielhkuo/radio-station/votes"
)

func NewRouter(ledger *votes.Ledger, migrator *db.Migrator, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voteHandler := handlers.NewVoteHandler(ledger)
	healthHandler := handlers.NewHealthHandler(cfg, migrator)

	// Probes
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)

	// Voting operations (public, anonymous)
	mux.HandleFunc("POST /songs/{id}/vote", middleware.WithLogging(voteHandler.SubmitVote))
	mux.HandleFunc("GET /songs/{id}/votes", middleware.WithLogging(voteHandler.GetVotes))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("radio-station API v1"))
	})

	return mux
}
