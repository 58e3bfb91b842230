// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers for the radio station
API.

# Handler Types

  - VoteHandler: song vote submission and retrieval
  - HealthHandler: liveness and readiness probes

Handlers are created via constructor functions with their dependencies
injected:

	voteHandler := handlers.NewVoteHandler(ledger)

# Voting Flow

Listeners vote anonymously; the caller's fingerprint is derived from request
metadata on every call, no token required:

	POST /songs/{id}/vote  → SubmitVote (body: {"polarity": 1} or {"polarity": -1})
	GET  /songs/{id}/votes → GetVotes

Both return the song's tally: {"upvotes": n, "downvotes": n, "my_vote": 0|1|-1}.
Repeating a vote is a no-op; voting the other way flips the earlier vote.

# Probes

	GET /health → liveness, uptime and database info
	GET /ready  → 200 only once the vote table migration has completed
*/
package handlers
