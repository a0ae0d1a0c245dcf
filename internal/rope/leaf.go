package rope

import (
	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/strsupport"
)

// Leaf is an immutable rope over a contiguous byte buffer.
//
// A Leaf never changes after construction, so it may be shared and read
// from any number of goroutines.
type Leaf struct {
	bytes   byteview.View
	enc     encoding.Encoding
	kind    Kind
	charLen int
}

// NewLeaf creates a leaf over v. The leaf takes ownership of v's storage:
// callers must not write to it afterwards.
//
// An Unknown cr makes NewLeaf classify the content. A negative charLen is
// computed from the content. When Debug is set, asserted values are
// checked against the content and a mismatch panics with a
// *CodeRangeMismatchError.
func NewLeaf(v byteview.View, enc encoding.Encoding, cr coderange.CodeRange, charLen int) *Leaf {
	if cr == coderange.Unknown {
		a := strsupport.Classify(enc, v, 0, v.Len())
		return &Leaf{bytes: v, enc: enc, kind: KindOf(a.CodeRange), charLen: a.CharacterLength}
	}
	if Debug {
		verify(v, enc, cr, charLen)
	}
	if charLen < 0 {
		charLen = strsupport.StrLength(enc, v.Raw(), 0, v.Len(), cr)
	}
	return &Leaf{bytes: v, enc: enc, kind: KindOf(cr), charLen: charLen}
}

// NewASCIIOnly creates a 7-bit leaf. Every byte is one character.
func NewASCIIOnly(v byteview.View, enc encoding.Encoding) *Leaf {
	return NewLeaf(v, enc, coderange.SevenBit, v.Len())
}

// NewValid creates a leaf of well formed, non-ASCII content.
func NewValid(v byteview.View, enc encoding.Encoding, charLen int) *Leaf {
	return NewLeaf(v, enc, coderange.Valid, charLen)
}

// NewInvalid creates a leaf of content with malformed units.
func NewInvalid(v byteview.View, enc encoding.Encoding, charLen int) *Leaf {
	return NewLeaf(v, enc, coderange.Broken, charLen)
}

// FromString creates a classified leaf holding a copy of s.
func FromString(s string, enc encoding.Encoding) *Leaf {
	return NewLeaf(byteview.FromString(s), enc, coderange.Unknown, -1)
}

// FromBytes creates a classified leaf holding a copy of b.
func FromBytes(b []byte, enc encoding.Encoding) *Leaf {
	return NewLeaf(byteview.New(b).Clone(), enc, coderange.Unknown, -1)
}

// Empty returns an empty leaf in enc.
func Empty(enc encoding.Encoding) *Leaf {
	return &Leaf{bytes: byteview.View{}, enc: enc, kind: KindASCIIOnly}
}

func verify(v byteview.View, enc encoding.Encoding, cr coderange.CodeRange, charLen int) {
	a := strsupport.Classify(enc, v, 0, v.Len())
	if a.CodeRange != cr || (charLen >= 0 && a.CharacterLength != charLen) {
		panic(&CodeRangeMismatchError{
			Asserted:       cr,
			Actual:         a.CodeRange,
			AssertedLength: charLen,
			ActualLength:   a.CharacterLength,
		})
	}
}

// Encoding implements Rope.
func (l *Leaf) Encoding() encoding.Encoding { return l.enc }

// ByteLength implements Rope.
func (l *Leaf) ByteLength() int { return l.bytes.Len() }

// CodeRange implements Rope.
func (l *Leaf) CodeRange() coderange.CodeRange { return l.kind.CodeRange() }

// CharacterLength implements Rope.
func (l *Leaf) CharacterLength() int { return l.charLen }

// Bytes implements Rope. The view shares the leaf's storage.
func (l *Leaf) Bytes() byteview.View { return l.bytes }

// ByteAt implements Rope.
func (l *Leaf) ByteAt(i int) byte { return l.bytes.Get(i) }

// Kind returns the leaf's code range kind.
func (l *Leaf) Kind() Kind { return l.kind }

// IsReadOnly always reports true.
func (l *Leaf) IsReadOnly() bool { return true }

// Hash returns the content hash of the leaf's bytes.
func (l *Leaf) Hash() int32 { return l.bytes.Hash() }

func (l *Leaf) String() string { return l.bytes.String() }

// MakeMutable returns a mutable leaf holding a private copy of the bytes.
// The receiver is never modified.
func (l *Leaf) MakeMutable() *MutableLeaf {
	return newMutable(l.bytes.Bytes(), l.enc, l.kind.CodeRange(), l.charLen)
}

// CloneAs returns a copy of the leaf with private storage, read-only or
// mutable as requested.
func (l *Leaf) CloneAs(readOnly bool) Rope {
	if readOnly {
		return &Leaf{bytes: l.bytes.Clone(), enc: l.enc, kind: l.kind, charLen: l.charLen}
	}
	return l.MakeMutable()
}

// Substring returns a leaf sharing the storage of byteLength bytes at
// byteOffset. It panics if the range is out of bounds.
func (l *Leaf) Substring(byteOffset, byteLength int) *Leaf {
	v := l.bytes.Slice(byteOffset, byteLength)
	if byteOffset == 0 && byteLength == l.bytes.Len() {
		return l
	}
	if l.kind == KindASCIIOnly {
		return &Leaf{bytes: v, enc: l.enc, kind: KindASCIIOnly, charLen: byteLength}
	}
	return NewLeaf(v, l.enc, coderange.Unknown, -1)
}

// WithEncoding returns a leaf over the same bytes reinterpreted in enc.
// A 7-bit leaf stays 7-bit when enc is ASCII compatible.
func (l *Leaf) WithEncoding(enc encoding.Encoding) *Leaf {
	if enc == l.enc {
		return l
	}
	if l.kind == KindASCIIOnly && enc.IsASCIICompatible() {
		return &Leaf{bytes: l.bytes, enc: enc, kind: KindASCIIOnly, charLen: l.charLen}
	}
	return NewLeaf(l.bytes, enc, coderange.Unknown, -1)
}
