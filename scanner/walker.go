package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/c360studio/structscan/location"
)

// DefaultSkipDirs are directory names skipped during walks: build output,
// dependency trees, and editor state.
var DefaultSkipDirs = []string{
	"target", "build", "bin", "out", "classes",
	"node_modules", "vendor", ".gradle", ".mvn",
	"test-output", ".idea", ".settings",
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithLogger sets the walker's logger.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) { w.logger = logger }
}

// WithRegistry sets the scanner registry to route files through. Defaults
// to DefaultRegistry.
func WithRegistry(reg *Registry) WalkerOption {
	return func(w *Walker) { w.registry = reg }
}

// WithSkipDirs replaces the default skip-directory list.
func WithSkipDirs(dirs []string) WalkerOption {
	return func(w *Walker) {
		if len(dirs) > 0 {
			w.skipDirs = dirs
		}
	}
}

// Walker is the default Scanner: it walks a location's tree once and routes
// each file to the FileScanner registered for its extension. File scanners
// are instantiated lazily and reused across files and locations.
type Walker struct {
	registry *Registry
	logger   *slog.Logger
	skipDirs []string

	mu       sync.Mutex
	scanners map[string]FileScanner // name → instance
}

// NewWalker creates a Walker backed by the default scanner registry.
func NewWalker(opts ...WalkerOption) *Walker {
	w := &Walker{
		registry: DefaultRegistry,
		logger:   slog.Default(),
		skipDirs: DefaultSkipDirs,
		scanners: make(map[string]FileScanner),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Scan implements Scanner. The location root must exist and be a directory;
// everything below it is best-effort: unreadable entries and files that fail
// to parse are logged and skipped so one bad file cannot abort the rest of
// the tree.
func (w *Walker) Scan(ctx context.Context, loc location.Location, fn Handler) error {
	info, err := os.Stat(loc.Path)
	if err != nil {
		return fmt.Errorf("location root %s: %w", loc.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("location root %s: not a directory", loc.Path)
	}

	err = filepath.WalkDir(loc.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission error on one entry must not abort the walk.
			w.logger.Warn("Skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != loc.Path && w.shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		name, ok := w.registry.ScannerName(ext)
		if !ok {
			return nil
		}

		fileScanner, err := w.scanner(name)
		if err != nil {
			return nil
		}

		if err := fileScanner.ScanFile(ctx, loc, path, fn); err != nil {
			if errors.Is(err, SkipAll) || errors.Is(err, context.Canceled) {
				return err
			}
			// Parse failure on one file: log and continue.
			w.logger.Warn("Failed to scan file", "path", path, "error", err)
		}
		return nil
	})

	if errors.Is(err, SkipAll) {
		return nil
	}
	return err
}

// scanner returns the cached FileScanner instance for a registered name.
func (w *Walker) scanner(name string) (FileScanner, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if sc, ok := w.scanners[name]; ok {
		return sc, nil
	}

	sc, err := w.registry.Create(name, w.logger)
	if err != nil {
		return nil, err
	}
	w.scanners[name] = sc
	return sc, nil
}

func (w *Walker) shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, skip := range w.skipDirs {
		if name == skip {
			return true
		}
	}
	return false
}
