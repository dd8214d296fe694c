// Package location manages the ordered set of source roots the engine scans.
// Each location pairs a namespace prefix with a filesystem path. The
// registered set determines the cache fingerprint; registration order
// determines scan order.
package location

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
)

// Location designates one root directory to scan, associated with the
// logical namespace rooted there. Immutable once registered.
type Location struct {
	// Prefix is the namespace prefix for types under this root
	// (e.g. "com.acme.shop").
	Prefix string `json:"prefix"`

	// Path is the root directory to scan.
	Path string `json:"path"`

	ord int
}

// Key uniquely identifies the location within a registry.
func (l Location) Key() string {
	return l.Prefix + "\x00" + l.Path
}

// Order is the registration order index. Collections use it to keep item
// ordering deterministic when locations are scanned concurrently.
func (l Location) Order() int {
	return l.ord
}

// Registry is the ordered set of registered locations. Adding a location
// never fails for path reasons; unreadable paths are filtered at scan time,
// not at registration time. Write-once-then-read-many: all registration
// happens during bootstrap, before the first run.
type Registry struct {
	mu        sync.RWMutex
	locations []Location
	seen      map[string]bool
}

// NewRegistry creates an empty location registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]bool)}
}

// Add registers a location. Re-adding an identical (prefix, path) pair is a
// no-op; the original registration order is kept.
func (r *Registry) Add(prefix, path string) Location {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc := Location{Prefix: prefix, Path: path}
	if r.seen[loc.Key()] {
		for _, existing := range r.locations {
			if existing.Key() == loc.Key() {
				return existing
			}
		}
	}

	loc.ord = len(r.locations)
	r.seen[loc.Key()] = true
	r.locations = append(r.locations, loc)
	return loc
}

// Locations returns the registered locations in registration order.
func (r *Registry) Locations() []Location {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Location, len(r.locations))
	copy(out, r.locations)
	return out
}

// Len returns the number of registered locations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.locations)
}

// Fingerprint hashes the registered location set. Only set membership
// matters: the (prefix, path) pairs are sorted before hashing, so
// registration order does not affect the result, while adding, removing, or
// changing any pair does.
func (r *Registry) Fingerprint() string {
	return Fingerprint(r.Locations())
}

// Fingerprint hashes a location list into a short stable hex digest.
func Fingerprint(locs []Location) string {
	keys := make([]string, 0, len(locs))
	for _, loc := range locs {
		keys = append(keys, loc.Key())
	}
	sort.Strings(keys)

	h := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(h[:8])
}
