package rope

import (
	"io"
	"slices"

	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/strsupport"
)

// Builder provides efficient incremental construction of a rope.
//
// It tracks the code range of what was appended while it can do so
// exactly. Edits in the middle of the buffer, and appends of broken
// content, make the code range unknown until Build classifies it.
//
// Builder implements strsupport.Buffer, so the in-place algorithms of
// that package can run directly on it.
type Builder struct {
	buf []byte
	enc encoding.Encoding
	cr  coderange.CodeRange
}

// NewBuilder creates an empty builder for enc with room for capacity
// bytes.
func NewBuilder(enc encoding.Encoding, capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
		enc: enc,
		cr:  coderange.SevenBit,
	}
}

// BuilderFrom creates a builder holding a copy of r.
func BuilderFrom(r Rope) *Builder {
	b := NewBuilder(r.Encoding(), r.ByteLength())
	b.AppendRope(r)
	return b
}

// Encoding returns the builder's encoding.
func (b *Builder) Encoding() encoding.Encoding {
	return b.enc
}

// SetEncoding reinterprets the accumulated bytes in enc.
func (b *Builder) SetEncoding(enc encoding.Encoding) {
	if enc != b.enc {
		b.enc = enc
		b.cr = coderange.Unknown
	}
}

// CodeRange returns the tracked code range, or Unknown.
func (b *Builder) CodeRange() coderange.CodeRange {
	return b.cr
}

func (b *Builder) join(cr coderange.CodeRange) {
	switch {
	case !b.cr.IsKnown() || !cr.IsKnown():
		b.cr = coderange.Unknown
	case b.cr == coderange.Broken || cr == coderange.Broken:
		// Malformed tails may combine into valid characters.
		b.cr = coderange.Unknown
	default:
		b.cr = coderange.Join(b.cr, cr)
	}
}

// Append appends p classified as cr. cr may be Unknown.
func (b *Builder) Append(p []byte, cr coderange.CodeRange) {
	if len(p) == 0 {
		return
	}
	b.buf = append(b.buf, p...)
	b.join(cr)
}

// AppendRope appends the bytes of r.
func (b *Builder) AppendRope(r Rope) {
	cr := coderange.Unknown
	if r.Encoding() == b.enc {
		cr = r.CodeRange()
	}
	b.Append(r.Bytes().Raw(), cr)
}

// Write implements io.Writer. The written bytes are not classified.
func (b *Builder) Write(p []byte) (int, error) {
	b.Append(p, coderange.Unknown)
	return len(p), nil
}

// WriteString appends s. The bytes are not classified.
func (b *Builder) WriteString(s string) (int, error) {
	if len(s) == 0 {
		return 0, nil
	}
	b.buf = append(b.buf, s...)
	b.cr = coderange.Unknown
	return len(s), nil
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	if c >= 0x80 || !b.enc.IsASCIICompatible() {
		b.cr = coderange.Unknown
	}
	return nil
}

// AppendRepeated appends c count times.
func (b *Builder) AppendRepeated(c byte, count int) {
	for range count {
		_ = b.WriteByte(c)
	}
}

// AppendCodePoint appends the encoding of code point c.
func (b *Builder) AppendCodePoint(c int) error {
	mbc, err := strsupport.CodeToMbc(b.enc, c)
	if err != nil {
		return err
	}
	cr := coderange.Valid
	if c < 0x80 && b.enc.IsASCIICompatible() {
		cr = coderange.SevenBit
	}
	b.Append(mbc, cr)
	return nil
}

// ReadFrom implements io.ReaderFrom.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	b.cr = coderange.Unknown
	for {
		b.buf = slices.Grow(b.buf, 4096)
		n, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
		b.buf = b.buf[:len(b.buf)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Bytes returns the accumulated bytes. The slice aliases the builder.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes accumulated.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Cap returns the capacity of the underlying buffer.
func (b *Builder) Cap() int {
	return cap(b.buf)
}

// Get returns the byte at i.
func (b *Builder) Get(i int) byte {
	return byteview.New(b.buf).Get(i)
}

// Set overwrites the byte at i.
func (b *Builder) Set(i int, c byte) {
	byteview.New(b.buf).Set(i, c)
	b.cr = coderange.Unknown
}

// SetLength truncates the builder to n bytes, or zero-extends it.
func (b *Builder) SetLength(n int) {
	if n > len(b.buf) {
		b.buf = slices.Grow(b.buf, n-len(b.buf))
		clear(b.buf[len(b.buf):n])
	}
	b.buf = b.buf[:n]
	b.cr = coderange.Unknown
}

// Replace substitutes src for the n bytes at off.
func (b *Builder) Replace(off, n int, src []byte) {
	b.buf = slices.Replace(b.buf, off, off+n, src...)
	b.cr = coderange.Unknown
}

// UnsafeReplace adopts buf as the builder's storage with length n.
func (b *Builder) UnsafeReplace(buf []byte, n int) {
	b.buf = buf[:n]
	b.cr = coderange.Unknown
}

// Grow ensures room for another n bytes.
func (b *Builder) Grow(n int) {
	b.buf = slices.Grow(b.buf, n)
}

// Reset clears the builder for reuse. The encoding is kept.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
	b.cr = coderange.SevenBit
}

// String returns the accumulated bytes as a string.
func (b *Builder) String() string {
	return string(b.buf)
}

// Build returns an immutable leaf holding a copy of the accumulated bytes.
// The builder stays usable.
func (b *Builder) Build() *Leaf {
	return NewLeaf(byteview.New(slices.Clone(b.buf)), b.enc, b.cr, -1)
}

// BuildMutable hands the accumulated bytes to a new MutableLeaf and
// resets the builder.
func (b *Builder) BuildMutable() *MutableLeaf {
	m := newMutable(b.buf, b.enc, b.cr, -1)
	b.buf = nil
	b.cr = coderange.SevenBit
	return m
}

// Concat returns a leaf holding a followed by b. Both must share an
// encoding.
func Concat(a, b Rope) *Leaf {
	bl := NewBuilder(a.Encoding(), a.ByteLength()+b.ByteLength())
	bl.AppendRope(a)
	bl.AppendRope(b)
	return bl.Build()
}

// Join concatenates ropes with sep between them.
func Join(ropes []Rope, sep Rope) *Leaf {
	if len(ropes) == 0 {
		return Empty(sep.Encoding())
	}
	b := NewBuilder(ropes[0].Encoding(), 0)
	for i, r := range ropes {
		if i > 0 {
			b.AppendRope(sep)
		}
		b.AppendRope(r)
	}
	return b.Build()
}

// Repeat returns a leaf holding r repeated n times.
func Repeat(r Rope, n int) *Leaf {
	if n <= 0 || r.ByteLength() == 0 {
		return Empty(r.Encoding())
	}
	b := NewBuilder(r.Encoding(), r.ByteLength()*n)
	for range n {
		b.AppendRope(r)
	}
	return b.Build()
}
