package rope

import (
	"fmt"
	"testing"

	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
)

// Debug enables content assertions in constructors. It is on by default
// under go test.
var Debug = testing.Testing()

// Rope is an encoded byte string.
type Rope interface {
	// Encoding returns the encoding the bytes are interpreted in.
	Encoding() encoding.Encoding

	// ByteLength returns the number of bytes.
	ByteLength() int

	// CodeRange returns the classification of the bytes, computing it
	// when not yet known.
	CodeRange() coderange.CodeRange

	// CharacterLength returns the number of characters, counting each
	// malformed unit as one.
	CharacterLength() int

	// Bytes returns a view of the content. Callers must not write
	// through it.
	Bytes() byteview.View

	// ByteAt returns the byte at index i.
	ByteAt(i int) byte
}

// Kind pins the code range of a Leaf.
type Kind uint8

const (
	// KindASCIIOnly leaves hold only bytes below 0x80.
	KindASCIIOnly Kind = iota + 1

	// KindValid leaves are well formed and not ASCII-only.
	KindValid

	// KindInvalid leaves contain at least one malformed unit.
	KindInvalid
)

// KindOf returns the Kind for a known code range.
// It panics if cr is Unknown.
func KindOf(cr coderange.CodeRange) Kind {
	switch cr {
	case coderange.SevenBit:
		return KindASCIIOnly
	case coderange.Valid:
		return KindValid
	case coderange.Broken:
		return KindInvalid
	}
	panic(fmt.Sprintf("rope: no leaf kind for code range %v", cr))
}

// CodeRange returns the code range pinned by k.
func (k Kind) CodeRange() coderange.CodeRange {
	switch k {
	case KindASCIIOnly:
		return coderange.SevenBit
	case KindValid:
		return coderange.Valid
	case KindInvalid:
		return coderange.Broken
	}
	return coderange.Unknown
}

func (k Kind) String() string {
	switch k {
	case KindASCIIOnly:
		return "ascii-only"
	case KindValid:
		return "valid"
	case KindInvalid:
		return "invalid"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// String returns the bytes of r as a Go string without decoding them.
func String(r Rope) string {
	return r.Bytes().String()
}

// Equal reports whether a and b hold the same bytes in the same encoding.
func Equal(a, b Rope) bool {
	if a == b {
		return true
	}
	return a.Encoding() == b.Encoding() && byteview.Equal(a.Bytes(), b.Bytes())
}

// IsEmpty reports whether r has no bytes.
func IsEmpty(r Rope) bool {
	return r.ByteLength() == 0
}
