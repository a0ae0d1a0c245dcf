package native

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/ropecore/internal/logging"
)

// DefaultMmapThreshold is the smallest block mapped with mmap by default.
const DefaultMmapThreshold = 64 * 1024

// Arena owns a set of blocks and frees them together.
//
// Arena is safe for concurrent use. The blocks it hands out are not.
type Arena struct {
	id        uuid.UUID
	logger    *logging.Logger
	threshold int
	limit     int

	mu       sync.Mutex
	blocks   map[*Block]struct{}
	hooks    []func()
	live     int
	released bool
}

// Option configures an Arena.
type Option func(*Arena)

// WithLogger sets the logger used for allocation and release events.
func WithLogger(l *logging.Logger) Option {
	return func(a *Arena) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMmapThreshold sets the smallest block size served by mmap.
// A negative threshold disables mmap.
func WithMmapThreshold(n int) Option {
	return func(a *Arena) {
		a.threshold = n
	}
}

// WithLimit caps the live bytes of the arena. Zero means unlimited.
func WithLimit(n int) Option {
	return func(a *Arena) {
		a.limit = n
	}
}

// NewArena creates an empty arena.
func NewArena(opts ...Option) *Arena {
	a := &Arena{
		id:        uuid.New(),
		logger:    logging.Null,
		threshold: DefaultMmapThreshold,
		blocks:    make(map[*Block]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithComponent("native").WithField("arena", a.id.String())
	return a
}

// ID returns the arena identifier.
func (a *Arena) ID() uuid.UUID {
	return a.id
}

// Alloc returns a zeroed block of n bytes.
func (a *Arena) Alloc(n int) (*Block, error) {
	if n < 0 {
		return nil, &AllocationError{Size: n, Err: ErrInvalidSize}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		panic(ErrReleased)
	}
	if a.limit > 0 && a.live+n > a.limit {
		return nil, &AllocationError{Size: n}
	}

	b := &Block{arena: a}
	if mmapSupported && a.threshold >= 0 && n >= a.threshold && n > 0 {
		mem, err := mapAnon(n)
		if err != nil {
			a.logger.Error("mmap of %d bytes failed: %v", n, err)
			return nil, &AllocationError{Size: n, Err: err}
		}
		b.mem = mem
		b.mapped = true
	} else {
		b.mem = make([]byte, n)
	}

	a.blocks[b] = struct{}{}
	a.live += n
	a.logger.Debug("alloc %d bytes (mapped=%v, live=%d)", n, b.mapped, a.live)
	return b, nil
}

// Free releases a single block before the arena itself is released.
// It panics if the block was already freed or belongs to another arena.
func (a *Arena) Free(b *Block) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		panic(ErrReleased)
	}
	if _, ok := a.blocks[b]; !ok {
		panic(ErrDoubleRelease)
	}
	a.freeLocked(b)
}

func (a *Arena) freeLocked(b *Block) {
	delete(a.blocks, b)
	a.live -= len(b.mem)
	b.freed.Store(true)
	if b.mapped {
		if err := unmap(b.mem); err != nil {
			a.logger.Warn("munmap of %d bytes failed: %v", len(b.mem), err)
		}
	}
	b.mem = nil
}

// OnRelease registers fn to run when the arena is released, before its
// blocks are freed. Hooks run in registration order.
func (a *Arena) OnRelease(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		panic(ErrReleased)
	}
	a.hooks = append(a.hooks, fn)
}

// Release runs the release hooks and frees every live block.
// It panics when called a second time.
func (a *Arena) Release() {
	a.mu.Lock()
	if a.released {
		a.mu.Unlock()
		panic(ErrDoubleRelease)
	}
	a.released = true
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.blocks)
	for b := range a.blocks {
		a.freeLocked(b)
	}
	a.logger.Debug("released %d blocks", n)
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// Len returns the number of live blocks.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}

// LiveBytes returns the total size of the live blocks.
func (a *Arena) LiveBytes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Block is a fixed-size allocation owned by an Arena.
type Block struct {
	arena  *Arena
	mem    []byte
	mapped bool
	freed  atomic.Bool
}

// Bytes returns the live memory of the block. Writes through the slice
// are visible to every holder of the block.
// It panics if the block has been freed.
func (b *Block) Bytes() []byte {
	if b.freed.Load() {
		panic(ErrReleased)
	}
	return b.mem
}

// Size returns the block size in bytes.
func (b *Block) Size() int {
	if b.freed.Load() {
		panic(ErrReleased)
	}
	return len(b.mem)
}

// Arena returns the owning arena.
func (b *Block) Arena() *Arena {
	return b.arena
}

// Mapped reports whether the block is an anonymous mapping.
func (b *Block) Mapped() bool {
	return b.mapped
}

// Freed reports whether the block has been freed.
func (b *Block) Freed() bool {
	return b.freed.Load()
}
