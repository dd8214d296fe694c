package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/structscan/builtin"
	"github.com/c360studio/structscan/cache"
	"github.com/c360studio/structscan/config"
	"github.com/c360studio/structscan/discovery"
	"github.com/c360studio/structscan/emit"
	"github.com/c360studio/structscan/scanner"
)

// app wires configuration into a ready-to-run engine with the built-in
// discoveries registered against a manifest sink.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	engine   *discovery.Engine
	cache    cache.Cache
	manifest *emit.Manifest
	nc       *nats.Conn
}

func buildApp(configPath string, logger *slog.Logger) (*app, error) {
	loader := config.NewLoader(logger)

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = loader.LoadFile(configPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if len(cfg.Locations) == 0 {
		return nil, fmt.Errorf("no locations configured; add a locations entry to %s", config.ProjectConfigFile)
	}

	a := &app{cfg: cfg, logger: logger}

	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, fmt.Errorf("connect to NATS: %w", err)
		}
		a.nc = nc
	}

	a.cache, err = a.buildCache(context.Background())
	if err != nil {
		a.close()
		return nil, err
	}

	walker := scanner.NewWalker(
		scanner.WithLogger(logger),
		scanner.WithSkipDirs(append(scanner.DefaultSkipDirs, cfg.Scanner.SkipDirs...)),
	)

	a.engine = discovery.New(walker,
		discovery.WithLogger(logger),
		discovery.WithCache(a.cache),
		discovery.WithWorkers(cfg.Scanner.Workers),
		discovery.WithTTL(cfg.Cache.TTL),
	)

	for _, loc := range cfg.Locations {
		if err := a.engine.AddLocationPattern(loc.Prefix, loc.Path); err != nil {
			logger.Warn("Location pattern skipped", "prefix", loc.Prefix, "pattern", loc.Path, "error", err)
		}
	}

	a.manifest = emit.NewManifest(a.engine.Fingerprint())
	if err := a.registerBuiltins(); err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

func (a *app) buildCache(ctx context.Context) (cache.Cache, error) {
	switch a.cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNoop(), nil
	case config.CacheMemory:
		return cache.NewMemory(), nil
	case config.CacheFile:
		return cache.NewFile(a.cfg.Cache.Dir, a.logger), nil
	case config.CacheNATS:
		if a.nc == nil {
			return nil, fmt.Errorf("nats cache backend requires nats.url")
		}
		js, err := jetstream.New(a.nc)
		if err != nil {
			return nil, fmt.Errorf("create JetStream context: %w", err)
		}
		return cache.NewKV(ctx, js, a.cfg.Cache.Bucket, a.logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.Cache.Backend)
	}
}

// registerBuiltins registers taxonomies before content types so taxonomy
// registrations land first, then the rest in a stable order.
func (a *app) registerBuiltins() error {
	dc := func(id string) config.DiscoveryConfig { return a.cfg.Discoveries[id] }
	attr := func(id, role, def string) string {
		if v, ok := dc(id).Attributes[role]; ok && v != "" {
			return v
		}
		return def
	}

	if dc("taxonomies").On() {
		d := builtin.NewTaxonomyDiscovery(a.manifest)
		d.Attribute = attr("taxonomies", "attribute", builtin.AttrTaxonomy)
		if err := a.engine.AddDiscovery(d); err != nil {
			return err
		}
	}
	if dc("content_types").On() {
		d := builtin.NewContentTypeDiscovery(a.manifest)
		d.Attribute = attr("content_types", "attribute", builtin.AttrContentType)
		if err := a.engine.AddDiscovery(d); err != nil {
			return err
		}
	}
	if dc("hooks").On() {
		d := builtin.NewHookDiscovery(a.manifest)
		d.ActionAttribute = attr("hooks", "action", builtin.AttrAction)
		d.FilterAttribute = attr("hooks", "filter", builtin.AttrFilter)
		if err := a.engine.AddDiscovery(d); err != nil {
			return err
		}
	}
	if dc("schedules").On() {
		d := builtin.NewScheduleDiscovery(a.manifest)
		d.Attribute = attr("schedules", "attribute", builtin.AttrSchedule)
		if err := a.engine.AddDiscovery(d); err != nil {
			return err
		}
	}
	if dc("services").On() {
		d := builtin.NewServiceDiscovery(a.manifest)
		d.Interface = attr("services", "interface", builtin.IfaceServiceProvider)
		if err := a.engine.AddDiscovery(d); err != nil {
			return err
		}
	}
	if dc("commands").On() {
		d := builtin.NewCommandDiscovery(a.manifest)
		d.Attribute = attr("commands", "attribute", builtin.AttrCommand)
		d.Interface = attr("commands", "interface", builtin.IfaceConsoleCommand)
		if err := a.engine.AddDiscovery(d); err != nil {
			return err
		}
	}
	return nil
}

// run discovers and applies, then emits the manifest and notification.
func (a *app) run(ctx context.Context, only []string, clearCache bool) error {
	if clearCache {
		if err := a.engine.ClearCache(ctx, only...); err != nil {
			return err
		}
	}

	if err := a.engine.Run(ctx, only...); err != nil {
		return err
	}
	return a.emit()
}

// discover collects without applying, reporting what a run would register.
func (a *app) discover(ctx context.Context, only []string, clearCache bool) error {
	if clearCache {
		if err := a.engine.ClearCache(ctx, only...); err != nil {
			return err
		}
	}

	if err := a.engine.Discover(ctx, only...); err != nil {
		return err
	}

	for _, d := range a.engine.Discoveries().All() {
		if c, ok := d.(interface{ Len() int }); ok {
			fmt.Printf("%-16s %d\n", d.Identifier(), c.Len())
		}
	}
	return nil
}

// watch re-runs the pipeline after each debounced batch of source changes.
func (a *app) watch(ctx context.Context) error {
	if err := a.run(ctx, nil, false); err != nil {
		a.logger.Error("Initial run failed", "error", err)
	}

	w, err := scanner.NewWatcher(scanner.WatcherConfig{
		Locations: a.engine.Locations(),
		SkipDirs:  append(scanner.DefaultSkipDirs, a.cfg.Scanner.SkipDirs...),
		Logger:    a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	return w.Start(ctx, func(ctx context.Context) {
		// Sources changed under an unchanged location set, so the old
		// fingerprint now maps to stale results. Drop and re-run.
		if err := a.engine.ClearCache(ctx); err != nil {
			a.logger.Warn("Cache clear failed", "error", err)
		}
		a.manifest.Reset(a.engine.Fingerprint())
		if err := a.run(ctx, nil, false); err != nil {
			a.logger.Error("Run failed", "error", err)
		}
	})
}

func (a *app) flushCache(ctx context.Context) error {
	if err := a.cache.Flush(ctx); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	fmt.Println("Cache flushed")
	return nil
}

func (a *app) emit() error {
	if a.cfg.Output.Manifest != "" {
		if err := a.manifest.WriteFile(a.cfg.Output.Manifest); err != nil {
			return err
		}
		a.logger.Info("Manifest written",
			"path", a.cfg.Output.Manifest,
			"items", a.manifest.Total())
	}

	pub := emit.NewPublisher(a.nc, a.cfg.Output.Subject)
	if err := pub.Publish(a.manifest); err != nil {
		a.logger.Warn("Run notification not published", "error", err)
	}
	return nil
}

func (a *app) close() {
	if a.nc != nil {
		a.nc.Close()
	}
}
