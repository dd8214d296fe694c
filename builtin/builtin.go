// Package builtin ships the stock discoveries: hooks, content types,
// taxonomies, schedules, service providers, and console commands. Each
// matches on framework annotations or interfaces, collects typed items,
// and applies them through a caller-supplied registrar.
package builtin

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/structscan/discovery"
)

// Default annotation and interface names matched by the stock discoveries.
// Every discovery exposes fields to override these before registration.
const (
	AttrAction      = "io.c360.frame.hooks.Action"
	AttrFilter      = "io.c360.frame.hooks.Filter"
	AttrContentType = "io.c360.frame.registry.ContentType"
	AttrTaxonomy    = "io.c360.frame.registry.Taxonomy"
	AttrSchedule    = "io.c360.frame.cron.Schedule"
	AttrCommand     = "io.c360.frame.console.Command"

	IfaceServiceProvider = "io.c360.frame.container.ServiceProvider"
	IfaceConsoleCommand  = "io.c360.frame.console.ConsoleCommand"
)

// snapshotVersion guards cached payloads across releases. A bump here makes
// older cache entries restore as a mismatch, forcing a fresh scan instead
// of deserializing items collected under different matching rules.
const snapshotVersion = 1

type snapshot struct {
	Version int             `json:"version"`
	Items   json.RawMessage `json:"items"`
}

// base carries the shared identity, accumulation, and serialization logic
// for the stock discoveries.
type base[T any] struct {
	id    string
	items *discovery.Collection[T]
}

func newBase[T any](id string) base[T] {
	return base[T]{id: id, items: discovery.NewCollection[T]()}
}

// Identifier returns the discovery's registry and cache key.
func (b *base[T]) Identifier() string { return b.id }

// Reset discards collected items.
func (b *base[T]) Reset() { b.items.Reset() }

// Len returns the number of collected items.
func (b *base[T]) Len() int { return b.items.Len() }

// Items returns collected items in deterministic order.
func (b *base[T]) Items() []T { return b.items.Items() }

// Snapshot serializes collected items inside a versioned envelope.
func (b *base[T]) Snapshot() ([]byte, error) {
	items, err := json.Marshal(b.items)
	if err != nil {
		return nil, fmt.Errorf("encoding %s items: %w", b.id, err)
	}
	return json.Marshal(snapshot{Version: snapshotVersion, Items: items})
}

// Restore deserializes a cached snapshot. Version mismatches fail so the
// engine falls back to a fresh scan.
func (b *base[T]) Restore(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding %s snapshot: %w", b.id, err)
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("%s snapshot version %d, want %d", b.id, s.Version, snapshotVersion)
	}
	if err := json.Unmarshal(s.Items, b.items); err != nil {
		return fmt.Errorf("decoding %s items: %w", b.id, err)
	}
	return nil
}
