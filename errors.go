package resque

import "errors"

var (
	// Store errors.
	ErrNoStore     = errors.New("resque: no store configured")
	ErrStoreClosed = errors.New("resque: store closed")

	// Input errors.
	ErrInvalidArgument   = errors.New("resque: invalid argument")
	ErrInvalidPrefix     = errors.New("resque: invalid key prefix")
	ErrUnknownStatistics = errors.New("resque: unknown statistics implementation")

	// Status errors.
	ErrStatusExists      = errors.New("resque: status already exists")
	ErrStatusNotFound    = errors.New("resque: status not found")
	ErrInvalidTransition = errors.New("resque: invalid status transition")

	// Failure errors.
	ErrFailureNotFound = errors.New("resque: failure not found")
	ErrNotSupported    = errors.New("resque: operation not supported by backend")
)
