// Package discovery implements the two-phase component discovery pipeline:
// a collect phase that matches scanned structures against pluggable
// discoveries, and an apply phase that performs registration side effects.
// Collected results cache per location-set fingerprint so stable
// environments skip re-scanning.
package discovery

import (
	"context"

	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

// Discovery is a named unit of matching, collection, and application logic.
//
// Discover must be a pure function of (location, structure) plus the
// discovery's own accumulated state: it records matches but performs no
// registration side effects. All side effects belong in Apply. This split
// is what makes caching the collect phase valid — on a warm cache the
// engine restores the accumulated items and skips straight to Apply.
type Discovery interface {
	// Identifier is the stable identity used for registry lookup and cache
	// keying. Changing it across versions orphans old cache entries.
	Identifier() string

	// Discover inspects one scanned structure and, if it matches this
	// discovery's criteria, records a payload under the location. Errors
	// are per-structure: the engine logs them and continues.
	Discover(loc location.Location, st *structure.Descriptor) error

	// Apply performs the registration side effects for everything
	// collected (freshly scanned or cache-restored). Called at most once
	// per run; an error aborts the remaining discoveries' apply phase.
	Apply(ctx context.Context) error

	// Reset clears the accumulated items. Called at the start of each run.
	Reset()

	// Snapshot serializes the accumulated items for caching.
	Snapshot() ([]byte, error)

	// Restore replaces the accumulated items from a cached snapshot. An
	// error makes the engine fall back to a fresh scan.
	Restore(data []byte) error
}
