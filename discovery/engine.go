package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/structscan/cache"
	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/scanner"
	"github.com/c360studio/structscan/structure"
)

// DefaultTTL is the cache retention applied when none is configured.
// Expiry is storage hygiene only; correctness comes from the fingerprint.
const DefaultTTL = 24 * time.Hour

// Engine orchestrates the discovery pipeline: resolve locations, scan them
// once per run, feed every structure to every selected discovery, cache the
// collected results, then apply.
//
// The scan phase is fail-soft: unreadable locations and unparseable files
// are logged and skipped so one bad input cannot block the rest. The apply
// phase is fail-fast: the first Apply error aborts the run, since partial
// registration is worse than none.
type Engine struct {
	locations   *location.Registry
	discoveries *Registry
	scanner     scanner.Scanner
	cache       cache.Cache
	logger      *slog.Logger
	workers     int
	ttl         time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache sets the result cache backend. Defaults to no caching.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithWorkers sets the number of locations scanned concurrently.
// Values below 2 keep scanning sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithTTL sets the cache entry retention.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// New creates an Engine that scans with sc.
func New(sc scanner.Scanner, opts ...Option) *Engine {
	e := &Engine{
		locations:   location.NewRegistry(),
		discoveries: NewRegistry(),
		scanner:     sc,
		cache:       cache.NewNoop(),
		logger:      slog.Default(),
		workers:     1,
		ttl:         DefaultTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddLocation registers a directory to scan under a prefix. Duplicate
// locations are ignored.
func (e *Engine) AddLocation(prefix, path string) {
	e.locations.Add(prefix, path)
}

// AddLocationPattern resolves a glob pattern to directories and registers
// each under the prefix. A pattern matching nothing registers nothing.
func (e *Engine) AddLocationPattern(prefix, pattern string) error {
	paths, err := location.ResolvePattern(pattern)
	if err != nil {
		return fmt.Errorf("resolving location pattern %q: %w", pattern, err)
	}
	for _, p := range paths {
		e.locations.Add(prefix, p)
	}
	return nil
}

// AddDiscovery registers a discovery. Order of registration is the order
// of application.
func (e *Engine) AddDiscovery(d Discovery) error {
	return e.discoveries.Register(d)
}

// Locations returns the registered locations in registration order.
func (e *Engine) Locations() []location.Location {
	return e.locations.Locations()
}

// Discoveries returns the discovery registry.
func (e *Engine) Discoveries() *Registry {
	return e.discoveries
}

// Fingerprint returns the cache fingerprint of the current location set.
func (e *Engine) Fingerprint() string {
	return e.locations.Fingerprint()
}

// Run discovers and applies in one pass.
func (e *Engine) Run(ctx context.Context, only ...string) error {
	if err := e.Discover(ctx, only...); err != nil {
		return err
	}
	return e.Apply(ctx, only...)
}

// Discover populates each selected discovery, from cache when the location
// fingerprint matches a prior run and by scanning otherwise. With no
// identifiers it covers every registered discovery.
func (e *Engine) Discover(ctx context.Context, only ...string) error {
	selected, err := e.selected(only)
	if err != nil {
		return err
	}

	fp := e.locations.Fingerprint()
	runID := uuid.New().String()
	logger := e.logger.With("run_id", runID, "fingerprint", fp)

	var stale []Discovery
	for _, d := range selected {
		d.Reset()

		data, ok := e.cache.Get(ctx, fp, d.Identifier())
		if !ok {
			stale = append(stale, d)
			continue
		}
		if err := d.Restore(data); err != nil {
			logger.Warn("cached results unusable, re-scanning",
				"discovery", d.Identifier(), "error", err)
			d.Reset()
			stale = append(stale, d)
			continue
		}
		logger.Debug("discovery restored from cache", "discovery", d.Identifier())
	}

	if len(stale) == 0 {
		return nil
	}

	start := time.Now()
	if err := e.scan(ctx, logger, stale); err != nil {
		return err
	}
	logger.Info("scan complete",
		"discoveries", len(stale),
		"locations", len(e.locations.Locations()),
		"duration", time.Since(start))

	for _, d := range stale {
		data, err := d.Snapshot()
		if err != nil {
			logger.Warn("snapshot failed, results not cached",
				"discovery", d.Identifier(), "error", err)
			continue
		}
		if err := e.cache.Put(ctx, fp, d.Identifier(), data, e.ttl); err != nil {
			logger.Warn("cache write failed",
				"discovery", d.Identifier(), "error", err)
		}
	}
	return nil
}

// Apply performs registration side effects for each selected discovery in
// registration order. The first failure aborts; remaining discoveries are
// not applied.
func (e *Engine) Apply(ctx context.Context, only ...string) error {
	selected, err := e.selected(only)
	if err != nil {
		return err
	}

	for _, d := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.Apply(ctx); err != nil {
			return fmt.Errorf("apply %s: %w", d.Identifier(), err)
		}
		e.logger.Debug("discovery applied", "discovery", d.Identifier())
	}
	return nil
}

// ClearCache forgets cached results for the current fingerprint. With no
// identifiers it covers every registered discovery.
func (e *Engine) ClearCache(ctx context.Context, only ...string) error {
	selected, err := e.selected(only)
	if err != nil {
		return err
	}

	fp := e.locations.Fingerprint()
	for _, d := range selected {
		if err := e.cache.Forget(ctx, fp, d.Identifier()); err != nil {
			return fmt.Errorf("clearing cache for %s: %w", d.Identifier(), err)
		}
	}
	return nil
}

func (e *Engine) selected(only []string) ([]Discovery, error) {
	if len(only) == 0 {
		return e.discoveries.All(), nil
	}

	out := make([]Discovery, 0, len(only))
	for _, id := range only {
		d, err := e.discoveries.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// scan walks every location once, feeding each structure to each stale
// discovery. Per-structure discovery errors are logged and skipped.
func (e *Engine) scan(ctx context.Context, logger *slog.Logger, stale []Discovery) error {
	handle := func(loc location.Location) error {
		return e.scanner.Scan(ctx, loc, func(st *structure.Descriptor) error {
			for _, d := range stale {
				if err := d.Discover(loc, st); err != nil {
					logger.Warn("discovery rejected structure",
						"discovery", d.Identifier(),
						"structure", st.QualifiedName,
						"source", st.SourcePath,
						"error", err)
				}
			}
			return nil
		})
	}

	locs := e.locations.Locations()
	if e.workers < 2 || len(locs) < 2 {
		for _, loc := range locs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := handle(loc); err != nil {
				logger.Warn("location skipped",
					"prefix", loc.Prefix, "path", loc.Path, "error", err)
			}
		}
		return nil
	}

	// Concurrent scan: one location per worker. Collections lock per Add,
	// and ordering is restored by location order at iteration time.
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(loc location.Location) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := handle(loc); err != nil {
				logger.Warn("location skipped",
					"prefix", loc.Prefix, "path", loc.Path, "error", err)
			}
		}(loc)
	}
	wg.Wait()
	return ctx.Err()
}
