package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Cache.Backend = CacheFile
	cfg.Cache.Dir = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Cache.Backend = CacheNATS
	assert.Error(t, cfg.Validate())
	cfg.NATS.URL = "nats://localhost:4222"
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Locations = []LocationConfig{{Prefix: "app"}}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Scanner.Workers = -1
	assert.Error(t, cfg.Validate())
}

func TestMergePrecedence(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Locations: []LocationConfig{{Prefix: "app", Path: "/src/app"}},
		Scanner:   ScannerConfig{Workers: 4},
		Cache:     CacheConfig{Backend: CacheMemory, TTL: time.Hour},
		Output:    OutputConfig{Manifest: "out/manifest.json"},
	})

	assert.Equal(t, 4, base.Scanner.Workers)
	assert.Equal(t, CacheMemory, base.Cache.Backend)
	assert.Equal(t, time.Hour, base.Cache.TTL)
	assert.Equal(t, "out/manifest.json", base.Output.Manifest)
	require.Len(t, base.Locations, 1)

	// Zero values never override.
	base.Merge(&Config{})
	assert.Equal(t, 4, base.Scanner.Workers)
	assert.Equal(t, CacheMemory, base.Cache.Backend)
}

func TestMergeDiscoveries(t *testing.T) {
	off := false
	base := DefaultConfig()
	base.Merge(&Config{Discoveries: map[string]DiscoveryConfig{
		"hooks": {Enabled: &off},
	}})

	assert.False(t, base.Discoveries["hooks"].On())
	// Unconfigured discoveries default to enabled.
	assert.True(t, base.Discoveries["services"].On())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
locations:
  - prefix: com.acme.app
    path: src/main/java
scanner:
  workers: 2
cache:
  backend: memory
discoveries:
  taxonomies:
    enabled: false
  hooks:
    attributes:
      action: com.legacy.On
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Locations, 1)
	assert.Equal(t, "com.acme.app", cfg.Locations[0].Prefix)
	assert.Equal(t, 2, cfg.Scanner.Workers)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.False(t, cfg.Discoveries["taxonomies"].On())
	assert.Equal(t, "com.legacy.On", cfg.Discoveries["hooks"].Attributes["action"])

	// Defaults survive for unset fields.
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Locations = []LocationConfig{{Prefix: "app", Path: "/src"}}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Locations, loaded.Locations)
	assert.Equal(t, cfg.Cache.Backend, loaded.Cache.Backend)
}
