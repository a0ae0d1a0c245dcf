package rope

import (
	"slices"

	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/strsupport"
)

// MutableLeaf is a uniquely owned leaf that supports in-place edits.
//
// The code range and character length live in an attribute cache.
// ReplaceRange widens the cached code range, Append extends it, and
// SetByte leaves it alone: after SetByte the cache may be stale until
// ClearCodeRange is called.
//
// Freeze turns the leaf into an immutable Leaf. Any mutator called after
// Freeze panics with ErrFrozen. MutableLeaf is not safe for concurrent
// mutation.
type MutableLeaf struct {
	buf    []byte
	enc    encoding.Encoding
	attrs  coderange.Cache
	frozen *Leaf
}

func newMutable(buf []byte, enc encoding.Encoding, cr coderange.CodeRange, charLen int) *MutableLeaf {
	m := &MutableLeaf{buf: buf, enc: enc}
	if cr.IsKnown() {
		m.attrs.Store(cr, charLen)
	}
	return m
}

// NewMutable creates a mutable leaf owning buf. cr may be Unknown and
// charLen negative; both are computed on first use.
func NewMutable(buf []byte, enc encoding.Encoding, cr coderange.CodeRange, charLen int) *MutableLeaf {
	return newMutable(buf, enc, cr, charLen)
}

// Encoding implements Rope.
func (m *MutableLeaf) Encoding() encoding.Encoding { return m.enc }

// ByteLength implements Rope.
func (m *MutableLeaf) ByteLength() int { return len(m.buf) }

// Bytes implements Rope. The view aliases the live buffer.
func (m *MutableLeaf) Bytes() byteview.View { return byteview.New(m.buf) }

// ByteAt implements Rope.
func (m *MutableLeaf) ByteAt(i int) byte { return byteview.New(m.buf).Get(i) }

// IsReadOnly reports whether the leaf has been frozen.
func (m *MutableLeaf) IsReadOnly() bool { return m.frozen != nil }

func (m *MutableLeaf) String() string { return string(m.buf) }

// CodeRange implements Rope. An unknown code range is computed from the
// current bytes and cached.
func (m *MutableLeaf) CodeRange() coderange.CodeRange {
	if cr := m.attrs.CodeRange(); cr.IsKnown() {
		return cr
	}
	a := strsupport.ClassifyBytes(m.enc, m.buf)
	m.attrs.StoreAttributes(a)
	return a.CodeRange
}

// CharacterLength implements Rope.
func (m *MutableLeaf) CharacterLength() int {
	cr, n := m.attrs.Load()
	if n >= 0 {
		return n
	}
	if cr.IsKnown() {
		n = strsupport.StrLength(m.enc, m.buf, 0, len(m.buf), cr)
		m.attrs.SetCharacterLength(n)
		return n
	}
	a := strsupport.ClassifyBytes(m.enc, m.buf)
	m.attrs.StoreAttributes(a)
	return a.CharacterLength
}

// ClearCodeRange forgets the cached code range and character length.
func (m *MutableLeaf) ClearCodeRange() {
	m.attrs.Clear()
}

func (m *MutableLeaf) checkMutable() {
	if m.frozen != nil {
		panic(ErrFrozen)
	}
}

// ReplaceRange overwrites len(src) bytes at off with src. The code range
// becomes the join of the current code range and srcCR, which is never
// narrower than either. The character length is forgotten.
// It panics if the range is out of bounds.
func (m *MutableLeaf) ReplaceRange(off int, src []byte, srcCR coderange.CodeRange) {
	m.checkMutable()
	if !srcCR.IsKnown() {
		srcCR = strsupport.ClassifyBytes(m.enc, src).CodeRange
	}
	cur := m.CodeRange()
	byteview.Copy(byteview.New(src), 0, byteview.New(m.buf), off, len(src))
	m.attrs.Store(coderange.Join(cur, srcCR), -1)
}

// SetByte overwrites the byte at i. The cached attributes are not
// updated; callers that may change the classification must call
// ClearCodeRange.
func (m *MutableLeaf) SetByte(i int, b byte) {
	m.checkMutable()
	byteview.New(m.buf).Set(i, b)
}

// Append adds b, classified as cr, to the end of the leaf.
func (m *MutableLeaf) Append(b []byte, cr coderange.CodeRange) {
	m.checkMutable()
	if len(b) == 0 {
		return
	}
	if !cr.IsKnown() {
		cr = strsupport.ClassifyBytes(m.enc, b).CodeRange
	}
	cur, n := m.attrs.Load()
	m.buf = append(m.buf, b...)
	if !cur.IsKnown() || cur == coderange.Broken || cr == coderange.Broken {
		// Malformed tails may combine into valid characters.
		m.attrs.Clear()
		return
	}
	if n >= 0 {
		n += strsupport.StrLength(m.enc, b, 0, len(b), cr)
	}
	m.attrs.Store(coderange.Join(cur, cr), n)
}

// Grow ensures room for another n bytes without reallocation.
func (m *MutableLeaf) Grow(n int) {
	m.checkMutable()
	m.buf = slices.Grow(m.buf, n)
}

// Freeze makes the leaf read-only and returns the immutable Leaf sharing
// its bytes. The content is classified afresh, so stale attributes left
// by SetByte do not leak into the Leaf. Freezing twice returns the same
// Leaf.
func (m *MutableLeaf) Freeze() *Leaf {
	if m.frozen != nil {
		return m.frozen
	}
	v := byteview.New(m.buf)
	a := strsupport.Classify(m.enc, v, 0, v.Len())
	m.attrs.StoreAttributes(a)
	m.frozen = &Leaf{bytes: v, enc: m.enc, kind: KindOf(a.CodeRange), charLen: a.CharacterLength}
	return m.frozen
}

// MakeReadOnly is Freeze.
func (m *MutableLeaf) MakeReadOnly() *Leaf {
	return m.Freeze()
}

// MakeMutable returns m itself, or a private copy once m is frozen.
func (m *MutableLeaf) MakeMutable() *MutableLeaf {
	if m.frozen != nil {
		return m.frozen.MakeMutable()
	}
	return m
}

// CloneAs returns a copy with private storage, read-only or mutable as
// requested.
func (m *MutableLeaf) CloneAs(readOnly bool) Rope {
	buf := slices.Clone(m.buf)
	if readOnly {
		return NewLeaf(byteview.New(buf), m.enc, coderange.Unknown, -1)
	}
	cr, n := m.attrs.Load()
	return newMutable(buf, m.enc, cr, n)
}

// Buffer returns an editable view of the leaf for the in-place
// algorithms of strsupport. Every edit through it clears the cached
// attributes.
func (m *MutableLeaf) Buffer() strsupport.Buffer {
	m.checkMutable()
	return (*mutableBuffer)(m)
}

type mutableBuffer MutableLeaf

// Bytes returns the live storage. It panics once the leaf is frozen, as
// the storage is then shared with the frozen Leaf.
func (b *mutableBuffer) Bytes() []byte {
	(*MutableLeaf)(b).checkMutable()
	return b.buf
}

func (b *mutableBuffer) Len() int { return len(b.buf) }

func (b *mutableBuffer) SetLength(n int) {
	(*MutableLeaf)(b).checkMutable()
	b.buf = b.buf[:n]
	b.attrs.Clear()
}

func (b *mutableBuffer) Replace(off, n int, src []byte) {
	(*MutableLeaf)(b).checkMutable()
	b.buf = slices.Replace(b.buf, off, off+n, src...)
	b.attrs.Clear()
}
