// Package cache persists serialized discovery results between runs, keyed by
// the location-set fingerprint and discovery identifier. Backends degrade
// gracefully: read and write failures surface as misses or logged warnings,
// never as run failures.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache stores discovery snapshots keyed by (fingerprint, identifier).
//
// Get returns (nil, false) on any miss, including expired or unreadable
// entries. Put overwrites any existing entry; ttl <= 0 stores without
// expiry. Entries never expire mid-run: expiry is storage hygiene, since a
// fingerprint change already invalidates stale results.
type Cache interface {
	Get(ctx context.Context, fingerprint, identifier string) ([]byte, bool)
	Put(ctx context.Context, fingerprint, identifier string, items []byte, ttl time.Duration) error
	Forget(ctx context.Context, fingerprint, identifier string) error
	Flush(ctx context.Context) error
}

// Entry is the stored envelope around a discovery snapshot.
type Entry struct {
	Fingerprint string          `json:"fingerprint"`
	Identifier  string          `json:"identifier"`
	Items       json.RawMessage `json:"items"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// Expired reports whether the entry's TTL has lapsed.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

func newEntry(fingerprint, identifier string, items []byte, ttl time.Duration) *Entry {
	e := &Entry{
		Fingerprint: fingerprint,
		Identifier:  identifier,
		Items:       items,
	}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		e.ExpiresAt = &exp
	}
	return e
}

// Noop is a cache that stores nothing. Every Get is a miss.
type Noop struct{}

// NewNoop creates a no-op cache.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) Get(context.Context, string, string) ([]byte, bool) { return nil, false }

func (*Noop) Put(context.Context, string, string, []byte, time.Duration) error { return nil }

func (*Noop) Forget(context.Context, string, string) error { return nil }

func (*Noop) Flush(context.Context) error { return nil }
