package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File is a directory-backed cache with one JSON file per entry. Unreadable
// or corrupt files are logged and treated as misses so a damaged cache never
// breaks a run.
type File struct {
	dir    string
	logger *slog.Logger
}

// NewFile creates a file cache rooted at dir. The directory is created on
// first write.
func NewFile(dir string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	return &File{dir: dir, logger: logger}
}

func (f *File) entryPath(fingerprint, identifier string) string {
	// Identifiers are caller-chosen; keep them filesystem-safe.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, identifier)
	return filepath.Join(f.dir, fingerprint+"-"+safe+".json")
}

// Get returns the cached snapshot, or a miss if absent, expired, or
// unreadable.
func (f *File) Get(_ context.Context, fingerprint, identifier string) ([]byte, bool) {
	path := f.entryPath(fingerprint, identifier)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("cache entry unreadable, treating as miss",
				"path", path, "error", err)
		}
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		f.logger.Warn("cache entry corrupt, treating as miss",
			"path", path, "error", err)
		return nil, false
	}

	if e.Expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false
	}
	return e.Items, true
}

// Put stores a snapshot, replacing any existing entry.
func (f *File) Put(_ context.Context, fingerprint, identifier string, items []byte, ttl time.Duration) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(newEntry(fingerprint, identifier, items, ttl))
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	path := f.entryPath(fingerprint, identifier)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Forget removes a single entry. Removing a missing entry is not an error.
func (f *File) Forget(_ context.Context, fingerprint, identifier string) error {
	err := os.Remove(f.entryPath(fingerprint, identifier))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}

// Flush removes every entry in the cache directory.
func (f *File) Flush(_ context.Context) error {
	matches, err := filepath.Glob(filepath.Join(f.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("listing cache entries: %w", err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing cache entry: %w", err)
		}
	}
	return nil
}
