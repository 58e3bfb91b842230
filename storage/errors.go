// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"errors"
	"fmt"
)

// Kind classifies storage failures so callers can react without parsing
// backend-specific message strings.
type Kind int

const (
	// KindQuery is a statement the backend rejected (syntax, missing table).
	KindQuery Kind = iota + 1

	// KindConstraint is a unique or check constraint violation.
	KindConstraint

	// KindTransient is pool exhaustion, an unreachable backend, or a timed
	// out connection acquisition. Safe to retry.
	KindTransient

	// KindTranslation is a malformed neutral statement (placeholder count
	// does not match the arguments). Programmer error.
	KindTranslation
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindConstraint:
		return "constraint"
	case KindTransient:
		return "transient"
	case KindTranslation:
		return "translation"
	default:
		return "unknown"
	}
}

// Error wraps a backend failure with its classification. The underlying
// driver error is preserved for logging.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsConstraint reports whether err is a unique/check constraint violation.
func IsConstraint(err error) bool { return isKind(err, KindConstraint) }

// IsTransient reports whether err is retryable (pool saturation, backend
// unreachable, acquisition timeout).
func IsTransient(err error) bool { return isKind(err, KindTransient) }

// IsTranslation reports whether err is a malformed neutral statement.
func IsTranslation(err error) bool { return isKind(err, KindTranslation) }

func isKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
