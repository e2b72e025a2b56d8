package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingAPIKey indicates no remote API key is configured.
	// The run cannot start without one.
	ErrMissingAPIKey = errors.New("API key not configured")

	// Remote API errors.

	// ErrAuthFailed indicates the remote API rejected the credentials.
	// Never retried; fatal for the run.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrQuotaExceeded indicates the rate-limit retry budget for one
	// call was exhausted. Fatal for the run only at the search stage.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrUnavailable indicates a non-recoverable transport failure
	// after the bounded retry policy gave up.
	ErrUnavailable = errors.New("service unavailable")

	// Per-item errors.

	// ErrMappingFailed indicates a fetched record could not be mapped
	// into a Bill. Always a per-item skip, never fatal.
	ErrMappingFailed = errors.New("record mapping failed")

	// ErrStorageFailed indicates a single record could not be written.
	// A per-item skip unless the store is entirely unreachable.
	ErrStorageFailed = errors.New("storage failed")
)
