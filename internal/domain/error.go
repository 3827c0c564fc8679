package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("email does not match job owner")
	ErrLockNotAcquired = errors.New("lock not acquired")

	// Upstream completion errors. ErrUpstreamTimeout is terminal for an
	// attempt and is never retried; the others are treated as transient.
	ErrUpstream          = errors.New("upstream request failed")
	ErrUpstreamTimeout   = errors.New("upstream request timed out")
	ErrTruncatedResponse = errors.New("upstream response truncated")

	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
