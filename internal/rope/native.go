package rope

import (
	"fmt"

	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/native"
	"github.com/dshills/ropecore/internal/strsupport"
)

// NativeRope is a rope stored in a native.Block of capacity+1 bytes. The
// byte after the content is always NUL.
//
// The bytes may be changed by code outside this package at any time, so
// every read goes to the live block. Cached attributes are trusted until
// ClearCodeRange is called.
//
// Several NativeRopes may share one block: WithByteLength returns a new
// view and the receiver must not be used afterwards.
type NativeRope struct {
	block *native.Block
	enc   encoding.Encoding
	n     int
	attrs coderange.Cache
}

// NewNative copies b into a fresh block of arena. An Unknown cr or a
// negative charLen is computed on demand.
func NewNative(arena *native.Arena, b []byte, enc encoding.Encoding, charLen int, cr coderange.CodeRange) (*NativeRope, error) {
	block, err := arena.Alloc(len(b) + 1)
	if err != nil {
		return nil, err
	}
	mem := block.Bytes()
	copy(mem, b)
	mem[len(b)] = 0
	return newNativeRope(block, len(b), enc, charLen, cr), nil
}

// NewNativeBuffer allocates a zeroed binary rope of the given capacity
// and byte length. It panics if byteLength exceeds capacity.
func NewNativeBuffer(arena *native.Arena, capacity, byteLength int) (*NativeRope, error) {
	if byteLength > capacity {
		panic(fmt.Errorf("%w: %d > %d", ErrCapacity, byteLength, capacity))
	}
	block, err := arena.Alloc(capacity + 1)
	if err != nil {
		return nil, err
	}
	return newNativeRope(block, byteLength, encoding.ASCII8BIT, -1, coderange.Unknown), nil
}

func newNativeRope(block *native.Block, n int, enc encoding.Encoding, charLen int, cr coderange.CodeRange) *NativeRope {
	r := &NativeRope{block: block, enc: enc, n: n}
	if cr.IsKnown() {
		r.attrs.Store(cr, charLen)
	}
	return r
}

// Encoding implements Rope.
func (r *NativeRope) Encoding() encoding.Encoding { return r.enc }

// ByteLength implements Rope.
func (r *NativeRope) ByteLength() int { return r.n }

// IsReadOnly always reports false: native memory can always be written.
func (r *NativeRope) IsReadOnly() bool { return false }

// Arena returns the arena that owns the block.
func (r *NativeRope) Arena() *native.Arena { return r.block.Arena() }

// Capacity returns the block size without the terminator.
func (r *NativeRope) Capacity() int { return r.block.Size() - 1 }

// Memory returns the live block including the terminator. Writes through
// it are seen by every view of the block; call ClearCodeRange after
// changing content.
func (r *NativeRope) Memory() []byte { return r.block.Bytes() }

// Bytes implements Rope. It returns a copy of the live content.
func (r *NativeRope) Bytes() byteview.View {
	return r.BytesRange(0, r.n)
}

// BytesRange returns a copy of n bytes at off.
func (r *NativeRope) BytesRange(off, n int) byteview.View {
	return byteview.New(r.block.Bytes()).Slice(off, n).Clone()
}

// CopyTo copies n bytes at off into dst at dstPos.
func (r *NativeRope) CopyTo(off int, dst byteview.View, dstPos, n int) {
	byteview.Copy(byteview.New(r.block.Bytes()), off, dst, dstPos, n)
}

// Get returns the byte at i. Any index up to Capacity is readable,
// including the terminator.
func (r *NativeRope) Get(i int) byte {
	return byteview.New(r.block.Bytes()).Get(i)
}

// ByteAt implements Rope.
func (r *NativeRope) ByteAt(i int) byte {
	return r.Get(i)
}

// Set writes b at i. The cached attributes are cleared unless the rope
// is 7-bit and b keeps it so.
func (r *NativeRope) Set(i int, b byte) {
	if !(r.attrs.CodeRange() == coderange.SevenBit && b < 0x80) {
		r.attrs.Clear()
	}
	byteview.New(r.block.Bytes()).Set(i, b)
}

// CodeRange implements Rope. An unknown code range is computed from the
// live bytes and cached.
func (r *NativeRope) CodeRange() coderange.CodeRange {
	if cr := r.attrs.CodeRange(); cr.IsKnown() {
		return cr
	}
	return r.rescan().CodeRange
}

// CharacterLength implements Rope.
func (r *NativeRope) CharacterLength() int {
	if n := r.attrs.CharacterLength(); n >= 0 {
		return n
	}
	return r.rescan().CharacterLength
}

func (r *NativeRope) rescan() coderange.Attributes {
	a := strsupport.Classify(r.enc, byteview.New(r.block.Bytes()), 0, r.n)
	r.attrs.StoreAttributes(a)
	return a
}

// ClearCodeRange forces the next attribute read to rescan the block.
func (r *NativeRope) ClearCodeRange() {
	r.attrs.Clear()
}

// UpdateAttributes replaces the cached attributes.
func (r *NativeRope) UpdateAttributes(a coderange.Attributes) {
	r.attrs.StoreAttributes(a)
}

// WithByteLength writes a terminator at n and returns a view of the same
// block with that length. The receiver is invalidated.
func (r *NativeRope) WithByteLength(n, charLen int, cr coderange.CodeRange) *NativeRope {
	if n > r.Capacity() {
		panic(fmt.Errorf("%w: %d > %d", ErrCapacity, n, r.Capacity()))
	}
	r.block.Bytes()[n] = 0
	return newNativeRope(r.block, n, r.enc, charLen, cr)
}

// WithEncoding returns a view of the same block in enc with unknown
// attributes.
func (r *NativeRope) WithEncoding(enc encoding.Encoding) *NativeRope {
	return newNativeRope(r.block, r.n, enc, -1, coderange.Unknown)
}

// MakeCopy copies the whole block, terminator included, into a new block
// of the same arena.
func (r *NativeRope) MakeCopy() (*NativeRope, error) {
	src := r.block.Bytes()
	block, err := r.block.Arena().Alloc(len(src))
	if err != nil {
		return nil, err
	}
	copy(block.Bytes(), src)
	cr, n := r.attrs.Load()
	return newNativeRope(block, r.n, r.enc, n, cr), nil
}

// Resize moves the content into a new block holding exactly n bytes,
// truncating or zero-extending it, and frees the old block.
func (r *NativeRope) Resize(n int) (*NativeRope, error) {
	block, err := r.move(n)
	if err != nil {
		return nil, err
	}
	return newNativeRope(block, n, r.enc, -1, coderange.Unknown), nil
}

// ExpandCapacity moves the content into a new block of the given
// capacity and frees the old block. The byte length is kept.
func (r *NativeRope) ExpandCapacity(capacity int) (*NativeRope, error) {
	block, err := r.move(capacity)
	if err != nil {
		return nil, err
	}
	n := min(r.n, capacity)
	return newNativeRope(block, n, r.enc, -1, coderange.Unknown), nil
}

func (r *NativeRope) move(size int) (*native.Block, error) {
	arena := r.block.Arena()
	block, err := arena.Alloc(size + 1)
	if err != nil {
		return nil, err
	}
	mem := block.Bytes()
	copy(mem[:size], r.block.Bytes())
	mem[size] = 0
	arena.Free(r.block)
	return block, nil
}

// ToLeaf copies the content into a classified immutable Leaf.
func (r *NativeRope) ToLeaf() *Leaf {
	return NewLeaf(r.Bytes(), r.enc, coderange.Unknown, -1)
}

// Hash returns the content hash of the live bytes.
func (r *NativeRope) Hash() int32 {
	return byteview.New(r.block.Bytes()).Slice(0, r.n).Hash()
}

func (r *NativeRope) String() string {
	return string(r.block.Bytes()[:r.n])
}
