// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP cross-cutting helpers: request logging with
per-request correlation ids, JSON response/body helpers, and CORS for the
player frontend.
*/
package middleware
