package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/structscan/location"
)

// WatcherConfig configures the location watcher
type WatcherConfig struct {
	// Locations are the scan roots to watch
	Locations []location.Location

	// Extensions are the file extensions that count as source changes
	// (default: every extension with a registered scanner)
	Extensions []string

	// SkipDirs are directory names never watched (default: DefaultSkipDirs)
	SkipDirs []string

	// DebounceDelay is how long to wait for more changes before firing
	// (default: 500ms)
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// Watcher watches registered locations for source changes and fires a
// callback after a quiet period. Change detail is not reported: any source
// change invalidates the whole scan, so callers re-run discovery.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	skip    map[string]struct{}
	exts    map[string]struct{}

	// Debouncing: count changes before firing
	pendingMu sync.Mutex
	pending   int
}

// NewWatcher creates a watcher over the configured locations.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if config.DebounceDelay == 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}

	skipDirs := config.SkipDirs
	if skipDirs == nil {
		skipDirs = DefaultSkipDirs
	}
	skip := make(map[string]struct{}, len(skipDirs))
	for _, d := range skipDirs {
		skip[d] = struct{}{}
	}

	exts := config.Extensions
	if exts == nil {
		exts = DefaultRegistry.ListExtensions()
	}
	extSet := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		extSet[ext] = struct{}{}
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		skip:    skip,
		exts:    extSet,
	}, nil
}

// Start begins watching and invokes onChange after each debounced batch of
// source changes. Blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context, onChange func(ctx context.Context)) error {
	for _, loc := range w.config.Locations {
		if err := w.addWatchesRecursive(loc.Path); err != nil {
			w.logger.Warn("Failed to watch location",
				"prefix", loc.Prefix,
				"path", loc.Path,
				"error", err)
		}
	}

	w.logger.Info("Location watcher started",
		"locations", len(w.config.Locations),
		"debounce", w.config.DebounceDelay)

	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if w.drainPending() {
				onChange(ctx)
			}
		}
	}
}

// addWatchesRecursive adds watches to all directories under root
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Only watch directories
		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if _, skip := w.skip[base]; skip || (strings.HasPrefix(base, ".") && path != root) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}

		return nil
	})
}

// handleFSEvent processes a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := w.exts[ext]; !ok {
		// Handle directory creation (for new watches)
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.handleNewDirectory(path)
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending++
	w.pendingMu.Unlock()

	w.logger.Debug("Source change detected",
		"path", path,
		"op", event.Op.String())
}

// handleNewDirectory adds a watch to a newly created directory
func (w *Watcher) handleNewDirectory(path string) {
	base := filepath.Base(path)
	if _, skip := w.skip[base]; skip || strings.HasPrefix(base, ".") {
		return
	}

	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
	} else {
		w.logger.Debug("Added watch for new directory", "path", path)
	}
}

// drainPending reports and clears the pending change count
func (w *Watcher) drainPending() bool {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	changed := w.pending > 0
	w.pending = 0
	return changed
}
