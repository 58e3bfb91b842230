// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the request, response and domain types shared across
the server.

Voter-identifying fields (fingerprint, session id, network address) are never
serialized into JSON responses.
*/
package models
