package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPreservesOrderAndDedupes(t *testing.T) {
	r := NewRegistry()
	r.Add("app", "/src/app")
	r.Add("plugins", "/src/plugins")
	r.Add("app", "/src/app") // duplicate, ignored
	r.Add("app", "/src/app/sub")

	locs := r.Locations()
	require.Len(t, locs, 3)
	assert.Equal(t, "/src/app", locs[0].Path)
	assert.Equal(t, "/src/plugins", locs[1].Path)
	assert.Equal(t, "/src/app/sub", locs[2].Path)

	// Order survives dedupe
	assert.Equal(t, 0, locs[0].Order())
	assert.Equal(t, 1, locs[1].Order())
	assert.Equal(t, 2, locs[2].Order())
}

func TestRegistrySamePathDifferentPrefix(t *testing.T) {
	r := NewRegistry()
	r.Add("app", "/src/shared")
	r.Add("lib", "/src/shared")

	assert.Len(t, r.Locations(), 2)
}

func TestFingerprintIgnoresRegistrationOrder(t *testing.T) {
	a := NewRegistry()
	a.Add("app", "/src/app")
	a.Add("plugins", "/src/plugins")

	b := NewRegistry()
	b.Add("plugins", "/src/plugins")
	b.Add("app", "/src/app")

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintChangesWithSet(t *testing.T) {
	a := NewRegistry()
	a.Add("app", "/src/app")
	base := a.Fingerprint()

	a.Add("plugins", "/src/plugins")
	assert.NotEqual(t, base, a.Fingerprint())

	// Prefix is part of the identity, not just the path
	b := NewRegistry()
	b.Add("other", "/src/app")
	assert.NotEqual(t, base, b.Fingerprint())
}

func TestFingerprintStable(t *testing.T) {
	r := NewRegistry()
	r.Add("app", "/src/app")

	assert.Equal(t, r.Fingerprint(), r.Fingerprint())
	assert.Len(t, r.Fingerprint(), 16)
}
