package discovery

import "errors"

// Common discovery registry errors.
var (
	// ErrDuplicateIdentifier is returned when a second discovery is
	// registered under an existing identifier. This is a programming
	// error surfaced at registration time, before any run.
	ErrDuplicateIdentifier = errors.New("discovery identifier already registered")

	// ErrNotFound is returned when looking up an unregistered identifier.
	ErrNotFound = errors.New("discovery not registered")
)
