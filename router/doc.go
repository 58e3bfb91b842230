// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes using Go 1.22+ pattern routing.

	GET  /health           → liveness
	GET  /ready            → readiness (migration completed)
	POST /songs/{id}/vote  → submit a vote
	GET  /songs/{id}/votes → vote tally
*/
package router
