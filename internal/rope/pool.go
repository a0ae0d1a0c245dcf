package rope

import (
	"sync"

	"github.com/dshills/ropecore/internal/encoding"
)

// maxPooledBuilder bounds the capacity of builders kept for reuse.
const maxPooledBuilder = 64 * 1024

// BuilderPool recycles Builders for scratch work such as case mapping.
// It uses sync.Pool for thread-safe pooling with per-P caches.
type BuilderPool struct {
	pool sync.Pool
}

// DefaultBuilderPool is the pool used by rope operations.
var DefaultBuilderPool = NewBuilderPool()

// NewBuilderPool creates an empty pool.
func NewBuilderPool() *BuilderPool {
	return &BuilderPool{
		pool: sync.Pool{
			New: func() any {
				return &Builder{}
			},
		},
	}
}

// Get returns an empty builder for enc with room for capacity bytes.
func (p *BuilderPool) Get(enc encoding.Encoding, capacity int) *Builder {
	b := p.pool.Get().(*Builder)
	b.enc = enc
	b.Reset()
	b.Grow(capacity)
	return b
}

// Put returns b to the pool. b must not be used afterwards.
func (p *BuilderPool) Put(b *Builder) {
	if b == nil || cap(b.buf) > maxPooledBuilder {
		return
	}
	b.buf = b.buf[:0]
	b.enc = nil
	p.pool.Put(b)
}
