// Package scanner turns source trees into streams of structure descriptors.
// Scanning is purely static: files are parsed, never loaded or executed, so
// scanned code may throw in initializers, miss dependencies, or belong to
// disabled modules without affecting the scan.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

// SkipAll is returned by a Handler to stop the scan early without error,
// mirroring fs.SkipAll semantics.
var SkipAll = errors.New("skip everything and stop the scan")

// Handler receives descriptors as they are produced. Descriptors stream in
// file-walk order; a handler can stop the scan early by returning SkipAll.
// Any other error abandons the current file, is logged, and the scan
// continues with the next file.
type Handler func(st *structure.Descriptor) error

// Scanner produces structure descriptors for everything under a location.
type Scanner interface {
	// Scan walks the location's root and feeds every descriptor to fn. An
	// unreadable root returns an error; unreadable or malformed entries
	// below the root are skipped with a warning.
	Scan(ctx context.Context, loc location.Location, fn Handler) error
}

// FileScanner extracts descriptors from a single source file.
type FileScanner interface {
	ScanFile(ctx context.Context, loc location.Location, path string, fn Handler) error
}

// Factory creates a FileScanner for a registered language.
type Factory func(logger *slog.Logger) FileScanner

// Registry maintains file scanners keyed by name and file extension.
// Thread-safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	scanners map[string]Factory // name → factory
	extMap   map[string]string  // extension → scanner name
}

// NewRegistry creates a new empty scanner registry.
func NewRegistry() *Registry {
	return &Registry{
		scanners: make(map[string]Factory),
		extMap:   make(map[string]string),
	}
}

// Register adds a scanner factory for the given extensions. The first
// registration wins if there's an extension conflict. Extensions include
// the leading dot (e.g. ".java").
func (r *Registry) Register(name string, extensions []string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scanners[name] = factory

	for _, ext := range extensions {
		if _, exists := r.extMap[ext]; !exists {
			r.extMap[ext] = name
		}
	}
}

// ScannerName returns the scanner name registered for a file extension.
func (r *Registry) ScannerName(ext string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.extMap[ext]
	return name, ok
}

// Create instantiates a scanner by name.
func (r *Registry) Create(name string, logger *slog.Logger) (FileScanner, error) {
	r.mu.RLock()
	factory, ok := r.scanners[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("scanner not registered: %s", name)
	}

	return factory(logger), nil
}

// HasScanner returns true if a scanner with the given name is registered.
func (r *Registry) HasScanner(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.scanners[name]
	return ok
}

// ListExtensions returns all registered file extensions.
func (r *Registry) ListExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extensions := make([]string, 0, len(r.extMap))
	for ext := range r.extMap {
		extensions = append(extensions, ext)
	}
	return extensions
}

// DefaultRegistry is the global scanner registry. Language scanners
// register themselves via init() functions.
var DefaultRegistry = NewRegistry()
