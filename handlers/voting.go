// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/danielhkuo/radio-station/fingerprint"
	"github.com/danielhkuo/radio-station/middleware"
	"github.com/danielhkuo/radio-station/models"
	"github.com/danielhkuo/radio-station/storage"
	"github.com/danielhkuo/radio-station/votes"
)

type VoteHandler struct {
	ledger *votes.Ledger
}

func NewVoteHandler(ledger *votes.Ledger) *VoteHandler {
	return &VoteHandler{ledger: ledger}
}

// SubmitVote handles POST /songs/{id}/vote
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	songID := r.PathValue("id")
	if songID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "song id is required")
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	fp, bundle := fingerprint.FromRequest(r)

	// The session id is claimed by the client and kept only for audit; a
	// caller without one gets a fresh id for this vote's record.
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	tally, err := h.ledger.Submit(r.Context(), songID, fp, req.Polarity, votes.Meta{
		SessionID:      sessionID,
		NetworkAddress: bundle.NetworkAddress,
	})
	if err != nil {
		respondLedgerError(w, "submit vote", songID, err)
		return
	}

	slog.Info("vote recorded", "song_id", songID, "polarity", req.Polarity)

	middleware.JSONResponse(w, http.StatusOK, tally)
}

// GetVotes handles GET /songs/{id}/votes
func (h *VoteHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	songID := r.PathValue("id")
	if songID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "song id is required")
		return
	}

	fp, _ := fingerprint.FromRequest(r)

	tally, err := h.ledger.Votes(r.Context(), songID, fp)
	if err != nil {
		respondLedgerError(w, "get votes", songID, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tally)
}

// respondLedgerError maps ledger failures onto HTTP statuses: validation to
// 400, transient storage trouble to 503 with Retry-After, the rest to 500.
func respondLedgerError(w http.ResponseWriter, op, songID string, err error) {
	switch {
	case errors.Is(err, votes.ErrInvalidPolarity),
		errors.Is(err, votes.ErrEmptySongID),
		errors.Is(err, votes.ErrEmptyFingerprint):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case storage.IsTransient(err):
		slog.Warn("storage temporarily unavailable", "op", op, "song_id", songID, "error", err)
		w.Header().Set("Retry-After", "1")
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Database busy, retry shortly")
	default:
		slog.Error("vote operation failed", "op", op, "song_id", songID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
