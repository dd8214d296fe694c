// Package emit turns applied discovery results into outputs: a JSON
// manifest on disk and an optional NATS notification for downstream
// consumers.
package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/structscan/builtin"
)

// Manifest accumulates everything the built-in discoveries register during
// one run. It implements every built-in registrar, so wiring it as the
// registrar of each discovery produces a complete picture of the scanned
// tree.
type Manifest struct {
	mu sync.Mutex

	RunID        string                    `json:"run_id"`
	Fingerprint  string                    `json:"fingerprint"`
	GeneratedAt  time.Time                 `json:"generated_at"`
	Hooks        []builtin.HookItem        `json:"hooks,omitempty"`
	ContentTypes []builtin.ContentTypeItem `json:"content_types,omitempty"`
	Taxonomies   []builtin.TaxonomyItem    `json:"taxonomies,omitempty"`
	Schedules    []builtin.ScheduleItem    `json:"schedules,omitempty"`
	Services     []builtin.ServiceItem     `json:"services,omitempty"`
	Commands     []builtin.CommandItem     `json:"commands,omitempty"`
}

// NewManifest creates a manifest for one run over the fingerprinted
// location set.
func NewManifest(fingerprint string) *Manifest {
	return &Manifest{
		RunID:       uuid.New().String(),
		Fingerprint: fingerprint,
		GeneratedAt: time.Now().UTC(),
	}
}

// Reset clears registered items for a fresh run over the given fingerprint,
// issuing a new run ID. Used by long-lived processes that re-run discovery
// on the same manifest.
func (m *Manifest) Reset(fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RunID = uuid.New().String()
	m.Fingerprint = fingerprint
	m.GeneratedAt = time.Now().UTC()
	m.Hooks = nil
	m.ContentTypes = nil
	m.Taxonomies = nil
	m.Schedules = nil
	m.Services = nil
	m.Commands = nil
}

// RegisterCallback implements builtin.HookRegistrar.
func (m *Manifest) RegisterCallback(_ context.Context, item builtin.HookItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hooks = append(m.Hooks, item)
	return nil
}

// RegisterContentType implements builtin.ContentTypeRegistrar.
func (m *Manifest) RegisterContentType(_ context.Context, item builtin.ContentTypeItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContentTypes = append(m.ContentTypes, item)
	return nil
}

// RegisterTaxonomy implements builtin.TaxonomyRegistrar.
func (m *Manifest) RegisterTaxonomy(_ context.Context, item builtin.TaxonomyItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Taxonomies = append(m.Taxonomies, item)
	return nil
}

// RegisterSchedule implements builtin.ScheduleRegistrar.
func (m *Manifest) RegisterSchedule(_ context.Context, item builtin.ScheduleItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Schedules = append(m.Schedules, item)
	return nil
}

// RegisterProvider implements builtin.ServiceRegistrar.
func (m *Manifest) RegisterProvider(_ context.Context, item builtin.ServiceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Services = append(m.Services, item)
	return nil
}

// RegisterCommand implements builtin.CommandRegistrar.
func (m *Manifest) RegisterCommand(_ context.Context, item builtin.CommandItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = append(m.Commands, item)
	return nil
}

// Total returns the number of registered items across all categories.
func (m *Manifest) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Hooks) + len(m.ContentTypes) + len(m.Taxonomies) +
		len(m.Schedules) + len(m.Services) + len(m.Commands)
}

// WriteFile writes the manifest as indented JSON, creating parent
// directories as needed.
func (m *Manifest) WriteFile(path string) error {
	m.mu.Lock()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating manifest directory: %w", err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
