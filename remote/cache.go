package remote

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// Key identifies one resolved resource: the pair of context name and lookup
// name, compared field by field.
type Key struct {
	Context string
	Name    string
}

func (k Key) String() string {
	return strconv.Quote(k.Context) + "/" + strconv.Quote(k.Name)
}

// Cache holds resolved values for the lifetime of an Extension. Entries are
// never evicted. Concurrent misses for one key may both resolve; the last
// Store wins.
type Cache struct {
	m sync.Map
	n atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// Load returns the value cached for k.
func (c *Cache) Load(k Key) (any, bool) {
	return c.m.Load(k)
}

// Store caches v under k.
func (c *Cache) Store(k Key, v any) {
	if _, loaded := c.m.Swap(k, v); !loaded {
		c.n.Add(1)
	}
}

// Len returns the number of cached keys.
func (c *Cache) Len() int { return int(c.n.Load()) }
