package discovery

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/c360studio/structscan/location"
)

// Collection is a per-discovery, per-run accumulator of matched items keyed
// by location. Items keep scan order within a location; locations keep
// registration order, so iteration is deterministic even when locations are
// scanned concurrently (each location is scanned by a single worker).
// The zero value is not usable; use NewCollection.
type Collection[T any] struct {
	mu     sync.Mutex
	groups []*itemGroup[T]
	index  map[string]*itemGroup[T]
}

type itemGroup[T any] struct {
	Location location.Location `json:"location"`
	Order    int               `json:"order"`
	Items    []T               `json:"items"`
}

// NewCollection creates an empty collection.
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{index: make(map[string]*itemGroup[T])}
}

// Add appends an item under the location.
func (c *Collection[T]) Add(loc location.Location, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := loc.Key()
	g, ok := c.index[key]
	if !ok {
		g = &itemGroup[T]{Location: loc, Order: loc.Order()}
		c.index[key] = g
		c.groups = append(c.groups, g)
	}
	g.Items = append(g.Items, item)
}

// Reset discards all accumulated items.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = nil
	c.index = make(map[string]*itemGroup[T])
}

// Len returns the total number of accumulated items.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, g := range c.groups {
		n += len(g.Items)
	}
	return n
}

// Items returns all items, ordered by location registration order then
// scan order within each location.
func (c *Collection[T]) Items() []T {
	var out []T
	_ = c.Each(func(_ location.Location, item T) error {
		out = append(out, item)
		return nil
	})
	return out
}

// Each iterates all items in deterministic order. The first error stops
// iteration and propagates.
func (c *Collection[T]) Each(fn func(loc location.Location, item T) error) error {
	c.mu.Lock()
	groups := c.sortedLocked()
	c.mu.Unlock()

	for _, g := range groups {
		for _, item := range g.Items {
			if err := fn(g.Location, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Collection[T]) sortedLocked() []*itemGroup[T] {
	groups := make([]*itemGroup[T], len(c.groups))
	copy(groups, c.groups)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Order < groups[j].Order
	})
	return groups
}

// MarshalJSON serializes the collection with deterministic group ordering.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	groups := c.sortedLocked()
	c.mu.Unlock()

	return json.Marshal(groups)
}

// UnmarshalJSON restores a collection from its serialized form.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var groups []*itemGroup[T]
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = groups
	c.index = make(map[string]*itemGroup[T], len(groups))
	for _, g := range groups {
		c.index[g.Location.Key()] = g
	}
	return nil
}
