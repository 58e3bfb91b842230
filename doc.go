// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the radio station API server.

The server backs the listener-facing radio web app: anonymous listeners vote
songs up or down while the stream plays, identified by a request-metadata
fingerprint rather than an account.

# Starting the Server

The server runs on SQLite out of the box:

	go run main.go

Or against PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run main.go

# Configuration

Optional settings (flag / env):

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): PostgreSQL connection string
  - DATABASE_PATH (-f): SQLite file path (default: radio.db)
  - DB_POOL_SIZE (-pool): max PostgreSQL connections (default: 10)
  - DB_POOL_TIMEOUT_MS (-pool-timeout): pool acquisition timeout

# Architecture

The server uses a handler-based architecture with dependency injection:

  - storage: backend-neutral query layer (SQLite or pooled PostgreSQL)
  - db: vote table bootstrap and legacy-schema repair
  - votes: the vote ledger (one vote per listener per song)
  - fingerprint: anonymous listener identity
  - handlers: HTTP request handlers (voting, health)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: request/response types
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
