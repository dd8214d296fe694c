package discovery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/structscan/location"
)

func locations(t *testing.T, prefixes ...string) []location.Location {
	t.Helper()
	r := location.NewRegistry()
	out := make([]location.Location, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, r.Add(p, "/src/"+p))
	}
	return out
}

func TestCollectionOrdering(t *testing.T) {
	locs := locations(t, "app", "plugins")
	c := NewCollection[string]()

	// Items arrive out of location order, as they would under a
	// concurrent scan.
	c.Add(locs[1], "p1")
	c.Add(locs[0], "a1")
	c.Add(locs[1], "p2")
	c.Add(locs[0], "a2")

	assert.Equal(t, []string{"a1", "a2", "p1", "p2"}, c.Items())
	assert.Equal(t, 4, c.Len())
}

func TestCollectionEachStopsOnError(t *testing.T) {
	locs := locations(t, "app")
	c := NewCollection[int]()
	c.Add(locs[0], 1)
	c.Add(locs[0], 2)

	var seen []int
	err := c.Each(func(_ location.Location, item int) error {
		seen = append(seen, item)
		if item == 1 {
			return assert.AnError
		}
		return nil
	})
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, []int{1}, seen)
}

func TestCollectionJSONRoundTrip(t *testing.T) {
	locs := locations(t, "app", "plugins")
	c := NewCollection[string]()
	c.Add(locs[1], "p1")
	c.Add(locs[0], "a1")

	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := NewCollection[string]()
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, c.Items(), restored.Items())
	assert.Equal(t, c.Len(), restored.Len())

	// The restored collection still accepts additions under known locations.
	restored.Add(locs[0], "a2")
	assert.Equal(t, []string{"a1", "a2", "p1"}, restored.Items())
}

func TestCollectionReset(t *testing.T) {
	locs := locations(t, "app")
	c := NewCollection[string]()
	c.Add(locs[0], "x")
	c.Reset()

	assert.Zero(t, c.Len())
	assert.Empty(t, c.Items())
}
