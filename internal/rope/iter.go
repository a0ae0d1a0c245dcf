package rope

import (
	"iter"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/strsupport"
)

// CharIterator iterates over the characters of a rope.
//
// Malformed input never stops iteration: each malformed unit is returned
// as a character of its own, for which Valid reports false.
type CharIterator struct {
	enc     encoding.Encoding
	cr      coderange.CodeRange
	b       []byte
	p       int
	start   int
	size    int
	started bool
}

// Chars returns an iterator over the characters of r. A mutable rope must
// not be edited while the iterator is in use.
func Chars(r Rope) *CharIterator {
	return &CharIterator{
		enc: r.Encoding(),
		cr:  r.CodeRange(),
		b:   r.Bytes().Raw(),
	}
}

// Next advances to the next character.
// Returns true if there is a character, false if iteration is complete.
func (it *CharIterator) Next() bool {
	if it.started {
		it.p += it.size
	}
	it.started = true
	if it.p >= len(it.b) {
		it.size = 0
		return false
	}
	it.start = it.p
	it.size = min(strsupport.CharacterLength(it.enc, it.cr, it.b, it.p, len(it.b), true), len(it.b)-it.p)
	return true
}

// Bytes returns the bytes of the current character.
func (it *CharIterator) Bytes() []byte {
	return it.b[it.start : it.start+it.size]
}

// Offset returns the byte offset of the current character.
func (it *CharIterator) Offset() int {
	return it.start
}

// Size returns the byte size of the current character.
func (it *CharIterator) Size() int {
	return it.size
}

// Valid reports whether the current character is well formed.
func (it *CharIterator) Valid() bool {
	switch it.cr {
	case coderange.SevenBit, coderange.Valid:
		return true
	}
	return strsupport.PreciseLength(it.enc, it.b, it.start, len(it.b)) == it.size
}

// CodePoint decodes the current character. ok is false for a malformed
// unit.
func (it *CharIterator) CodePoint() (c int, ok bool) {
	if !it.Valid() {
		return -1, false
	}
	return it.enc.MbcToCode(it.b, it.start, it.start+it.size), true
}

// All returns a sequence of byte offsets and character bytes.
func All(r Rope) iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		it := Chars(r)
		for it.Next() {
			if !yield(it.Offset(), it.Bytes()) {
				return
			}
		}
	}
}

// CodePoints returns a sequence of byte offsets and code points.
// Malformed units yield -1.
func CodePoints(r Rope) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		it := Chars(r)
		for it.Next() {
			c, _ := it.CodePoint()
			if !yield(it.Offset(), c) {
				return
			}
		}
	}
}

// CharAt returns the byte offset of the character at index, or -1 when
// index is out of range.
func CharAt(r Rope, index int) int {
	if index < 0 {
		return -1
	}
	if r.CodeRange() == coderange.SevenBit && r.Encoding().IsASCIICompatible() {
		if index < r.ByteLength() {
			return index
		}
		return -1
	}
	if enc := r.Encoding(); enc.IsFixedWidth() {
		if off := index * enc.MinLength(); off < r.ByteLength() {
			return off
		}
		return -1
	}
	it := Chars(r)
	for i := 0; it.Next(); i++ {
		if i == index {
			return it.Offset()
		}
	}
	return -1
}
