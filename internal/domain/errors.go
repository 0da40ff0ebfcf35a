package domain

import "errors"

var (
	// ErrValidation signals malformed query or filter input, rejected before
	// any backend call.
	ErrValidation = errors.New("invalid search input")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrBackendUnavailable signals an unreachable or erroring search backend.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrSearchUnavailable signals total backend exhaustion; the only failure
	// mode surfaced to callers.
	ErrSearchUnavailable = errors.New("search service unavailable")
)
