package coderange

import "sync/atomic"

// Attributes is the result of classifying a byte range.
type Attributes struct {
	CodeRange       CodeRange
	CharacterLength int
}

// Cache holds a code range and a character length in a single atomic word.
//
// Readers that find a field unknown recompute it from the bytes and store
// the result. Concurrent recomputation of the same bytes yields the same
// value, so a plain last-writer-wins publish is enough.
//
// Layout: bits 0-7 code range, bits 8-63 character length + 1 (0 = unknown).
type Cache struct {
	word atomic.Uint64
}

const lengthShift = 8

func pack(cr CodeRange, charLen int) uint64 {
	w := uint64(cr)
	if charLen >= 0 {
		w |= uint64(charLen+1) << lengthShift
	}
	return w
}

func unpack(w uint64) (CodeRange, int) {
	return CodeRange(w & 0xff), int(w>>lengthShift) - 1
}

// NewCache returns a cache preloaded with cr and charLen.
// A negative charLen means unknown.
func NewCache(cr CodeRange, charLen int) *Cache {
	c := &Cache{}
	c.Store(cr, charLen)
	return c
}

// Load returns the cached code range and character length.
// The length is -1 when unknown.
func (c *Cache) Load() (CodeRange, int) {
	return unpack(c.word.Load())
}

// CodeRange returns the cached code range.
func (c *Cache) CodeRange() CodeRange {
	cr, _ := c.Load()
	return cr
}

// CharacterLength returns the cached character length, or -1.
func (c *Cache) CharacterLength() int {
	_, n := c.Load()
	return n
}

// Store publishes both fields. A negative charLen stores unknown.
func (c *Cache) Store(cr CodeRange, charLen int) {
	c.word.Store(pack(cr, charLen))
}

// StoreAttributes publishes a completed classification.
func (c *Cache) StoreAttributes(a Attributes) {
	c.Store(a.CodeRange, a.CharacterLength)
}

// SetCodeRange replaces the code range and keeps the character length.
func (c *Cache) SetCodeRange(cr CodeRange) {
	for {
		old := c.word.Load()
		_, n := unpack(old)
		if c.word.CompareAndSwap(old, pack(cr, n)) {
			return
		}
	}
}

// SetCharacterLength replaces the character length and keeps the code range.
func (c *Cache) SetCharacterLength(n int) {
	for {
		old := c.word.Load()
		cr, _ := unpack(old)
		if c.word.CompareAndSwap(old, pack(cr, n)) {
			return
		}
	}
}

// JoinCodeRange widens the cached code range with cr and forgets the
// character length. An unknown cached range stays unknown.
func (c *Cache) JoinCodeRange(cr CodeRange) {
	for {
		old := c.word.Load()
		cur, _ := unpack(old)
		next := Unknown
		if cur.IsKnown() && cr.IsKnown() {
			next = Join(cur, cr)
		}
		if c.word.CompareAndSwap(old, pack(next, -1)) {
			return
		}
	}
}

// Clear forgets both fields.
func (c *Cache) Clear() {
	c.word.Store(0)
}
