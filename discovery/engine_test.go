package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/structscan/cache"
	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/scanner"
	"github.com/c360studio/structscan/structure"
)

// fakeScanner serves canned descriptors per location prefix and counts
// scans, standing in for a filesystem walk.
type fakeScanner struct {
	structures map[string][]*structure.Descriptor // prefix → descriptors
	failing    map[string]bool                    // prefix → unreadable root

	mu    sync.Mutex
	scans int
}

func (f *fakeScanner) Scan(_ context.Context, loc location.Location, fn scanner.Handler) error {
	f.mu.Lock()
	f.scans++
	f.mu.Unlock()
	if f.failing[loc.Prefix] {
		return fmt.Errorf("location root %s: permission denied", loc.Path)
	}
	for _, st := range f.structures[loc.Prefix] {
		if err := fn(st); err != nil {
			return err
		}
	}
	return nil
}

// recorder is a discovery collecting every qualified name it sees, with a
// real serializing snapshot so cache round-trips are exercised.
type recorder struct {
	id       string
	items    *Collection[string]
	applied  [][]string
	applyErr error
	order    *[]string // shared apply-order log
}

func newRecorder(id string, order *[]string) *recorder {
	return &recorder{id: id, items: NewCollection[string](), order: order}
}

func (r *recorder) Identifier() string { return r.id }

func (r *recorder) Discover(loc location.Location, st *structure.Descriptor) error {
	r.items.Add(loc, st.QualifiedName)
	return nil
}

func (r *recorder) Apply(context.Context) error {
	if r.order != nil {
		*r.order = append(*r.order, r.id)
	}
	r.applied = append(r.applied, r.items.Items())
	return r.applyErr
}

func (r *recorder) Reset() { r.items.Reset() }

func (r *recorder) Snapshot() ([]byte, error) { return json.Marshal(r.items) }

func (r *recorder) Restore(data []byte) error { return json.Unmarshal(data, r.items) }

func desc(qualified string) *structure.Descriptor {
	return &structure.Descriptor{Kind: structure.KindClass, QualifiedName: qualified}
}

func TestEngineRunEndToEnd(t *testing.T) {
	sc := &fakeScanner{structures: map[string][]*structure.Descriptor{
		"app":     {desc("com.acme.A"), desc("com.acme.B")},
		"plugins": {desc("org.plug.C")},
	}}

	e := New(sc)
	e.AddLocation("app", "/src/app")
	e.AddLocation("plugins", "/src/plugins")

	r := newRecorder("all", nil)
	require.NoError(t, e.AddDiscovery(r))

	require.NoError(t, e.Run(context.Background()))
	require.Len(t, r.applied, 1)
	assert.Equal(t, []string{"com.acme.A", "com.acme.B", "org.plug.C"}, r.applied[0])
	assert.Equal(t, 2, sc.scans)
}

func TestEngineWarmCacheSkipsScan(t *testing.T) {
	sc := &fakeScanner{structures: map[string][]*structure.Descriptor{
		"app": {desc("com.acme.A")},
	}}

	e := New(sc, WithCache(cache.NewMemory()))
	e.AddLocation("app", "/src/app")

	r := newRecorder("all", nil)
	require.NoError(t, e.AddDiscovery(r))

	require.NoError(t, e.Discover(context.Background()))
	cold := r.items.Items()
	assert.Equal(t, 1, sc.scans)

	// Second run restores from cache; no further scan happens and the
	// restored items match the cold ones.
	require.NoError(t, e.Discover(context.Background()))
	assert.Equal(t, 1, sc.scans)
	assert.Equal(t, cold, r.items.Items())
}

func TestEngineDiscoverIsIdempotent(t *testing.T) {
	sc := &fakeScanner{structures: map[string][]*structure.Descriptor{
		"app": {desc("com.acme.A")},
	}}

	e := New(sc) // no cache: every Discover rescans
	e.AddLocation("app", "/src/app")

	r := newRecorder("all", nil)
	require.NoError(t, e.AddDiscovery(r))

	require.NoError(t, e.Discover(context.Background()))
	require.NoError(t, e.Discover(context.Background()))

	// Reset before each run keeps results stable, not accumulated.
	assert.Equal(t, []string{"com.acme.A"}, r.items.Items())
}

func TestEngineClearCacheForcesRescan(t *testing.T) {
	sc := &fakeScanner{structures: map[string][]*structure.Descriptor{
		"app": {desc("com.acme.A")},
	}}

	e := New(sc, WithCache(cache.NewMemory()))
	e.AddLocation("app", "/src/app")
	require.NoError(t, e.AddDiscovery(newRecorder("all", nil)))

	require.NoError(t, e.Discover(context.Background()))
	require.NoError(t, e.ClearCache(context.Background()))
	require.NoError(t, e.Discover(context.Background()))
	assert.Equal(t, 2, sc.scans)
}

func TestEngineApplyOrderAndFailFast(t *testing.T) {
	sc := &fakeScanner{structures: map[string][]*structure.Descriptor{}}

	e := New(sc)
	e.AddLocation("app", "/src/app")

	var order []string
	a := newRecorder("a", &order)
	a.applyErr = errors.New("registrar unavailable")
	b := newRecorder("b", &order)
	require.NoError(t, e.AddDiscovery(a))
	require.NoError(t, e.AddDiscovery(b))

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply a")
	assert.Contains(t, err.Error(), "registrar unavailable")

	// The first failure stops the apply phase.
	assert.Equal(t, []string{"a"}, order)
	assert.Empty(t, b.applied)
}

func TestEngineScanIsFailSoft(t *testing.T) {
	sc := &fakeScanner{
		structures: map[string][]*structure.Descriptor{
			"good": {desc("com.acme.A")},
		},
		failing: map[string]bool{"bad": true},
	}

	e := New(sc)
	e.AddLocation("bad", "/missing")
	e.AddLocation("good", "/src/good")

	r := newRecorder("all", nil)
	require.NoError(t, e.AddDiscovery(r))

	// An unreadable location root is logged and skipped, not fatal.
	require.NoError(t, e.Discover(context.Background()))
	assert.Equal(t, []string{"com.acme.A"}, r.items.Items())
}

func TestEngineSelectUnknownDiscovery(t *testing.T) {
	e := New(&fakeScanner{})
	require.NoError(t, e.AddDiscovery(newRecorder("hooks", nil)))

	err := e.Discover(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEngineOnlySelectsSubset(t *testing.T) {
	sc := &fakeScanner{structures: map[string][]*structure.Descriptor{
		"app": {desc("com.acme.A")},
	}}

	e := New(sc)
	e.AddLocation("app", "/src/app")

	var order []string
	a := newRecorder("a", &order)
	b := newRecorder("b", &order)
	require.NoError(t, e.AddDiscovery(a))
	require.NoError(t, e.AddDiscovery(b))

	require.NoError(t, e.Run(context.Background(), "b"))
	assert.Equal(t, []string{"b"}, order)
	assert.Empty(t, a.items.Items())
	assert.Equal(t, []string{"com.acme.A"}, b.items.Items())
}

func TestEngineCorruptCacheEntryRescans(t *testing.T) {
	sc := &fakeScanner{structures: map[string][]*structure.Descriptor{
		"app": {desc("com.acme.A")},
	}}

	mem := cache.NewMemory()
	e := New(sc, WithCache(mem))
	e.AddLocation("app", "/src/app")

	r := newRecorder("all", nil)
	require.NoError(t, e.AddDiscovery(r))

	// Poison the cache entry; Restore fails and the engine falls back to
	// scanning.
	require.NoError(t, mem.Put(context.Background(), e.Fingerprint(), "all", []byte("{not json"), 0))
	require.NoError(t, e.Discover(context.Background()))
	assert.Equal(t, 1, sc.scans)
	assert.Equal(t, []string{"com.acme.A"}, r.items.Items())
}

func TestEngineConcurrentScanDeterministicOrder(t *testing.T) {
	sc := &fakeScanner{structures: map[string][]*structure.Descriptor{
		"a": {desc("a.One"), desc("a.Two")},
		"b": {desc("b.One")},
		"c": {desc("c.One")},
	}}

	e := New(sc, WithWorkers(4))
	e.AddLocation("a", "/src/a")
	e.AddLocation("b", "/src/b")
	e.AddLocation("c", "/src/c")

	r := newRecorder("all", nil)
	require.NoError(t, e.AddDiscovery(r))

	require.NoError(t, e.Discover(context.Background()))
	assert.Equal(t, []string{"a.One", "a.Two", "b.One", "c.One"}, r.items.Items())
}
