package domain

import "errors"

var (
	// ErrNotFound is matched by every source when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBackendRequired is returned for writes attempted in demo mode.
	ErrBackendRequired = errors.New("a configured backend is required for this operation")
)
