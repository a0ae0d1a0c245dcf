package rope

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
)

// Key identifies rope content: the bytes together with their encoding.
// Keys are comparable and usable as map keys.
type Key struct {
	enc     encoding.Encoding
	content string
}

// NewKey returns the key for b in enc.
func NewKey(b []byte, enc encoding.Encoding) Key {
	return Key{enc: enc, content: string(b)}
}

// KeyOf returns the key for the content of r.
func KeyOf(r Rope) Key {
	return Key{enc: r.Encoding(), content: r.Bytes().String()}
}

// Encoding returns the key's encoding.
func (k Key) Encoding() encoding.Encoding { return k.enc }

// Hash returns the content hash, equal to the hash of a view over the
// same bytes.
func (k Key) Hash() int32 { return byteview.FromString(k.content).Hash() }

func (k Key) String() string { return k.content }

// Cache deduplicates immutable leaves by content, so that equal literal
// strings share one Leaf.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	leaves map[Key]*Leaf
	limit  int

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// NewCache creates a cache holding at most limit leaves. A limit of zero
// means unbounded. Once full, new content is returned uncached.
func NewCache(limit int) *Cache {
	return &Cache{
		leaves: make(map[Key]*Leaf),
		limit:  limit,
	}
}

// Get returns the cached leaf for b in enc, creating it from a copy of b
// on a miss. cr may be Unknown.
func (c *Cache) Get(b []byte, enc encoding.Encoding, cr coderange.CodeRange) *Leaf {
	key := NewKey(b, enc)

	c.mu.RLock()
	l, ok := c.leaves[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return l
	}

	return c.insert(key, func() *Leaf {
		return NewLeaf(byteview.FromString(key.content), enc, cr, -1)
	})
}

// Intern returns the cached leaf equal to l, caching l itself if there is
// none.
func (c *Cache) Intern(l *Leaf) *Leaf {
	key := KeyOf(l)

	c.mu.RLock()
	cached, ok := c.leaves[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return cached
	}
	return c.insert(key, func() *Leaf { return l })
}

func (c *Cache) insert(key Key, create func() *Leaf) *Leaf {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.misses.Add(1)
	if l, ok := c.leaves[key]; ok {
		return l
	}
	l := create()
	if c.limit == 0 || len(c.leaves) < c.limit {
		c.leaves[key] = l
	}
	return l
}

// Contains reports whether content equal to r is cached.
func (c *Cache) Contains(r Rope) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.leaves[KeyOf(r)]
	return ok
}

// Len returns the number of cached leaves.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.leaves)
}

// Clear drops every cached leaf.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.leaves)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
