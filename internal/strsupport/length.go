package strsupport

import (
	"encoding/binary"
	"math/bits"

	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
)

// Multibyte length helpers. A length result r is a character of r bytes
// when r > 0, invalid when r == -1, and a truncated prefix needing
// NeedMoreLen(r) more bytes when r < -1.

// NeedMore encodes "n more bytes needed".
func NeedMore(n int) int { return -1 - n }

// IsNeedMore reports whether r asks for more bytes.
func IsNeedMore(r int) bool { return r < -1 }

// NeedMoreLen decodes the byte count from a NeedMore result.
func NeedMoreLen(r int) int { return -1 - r }

// IsInvalid reports whether r marks invalid bytes.
func IsInvalid(r int) bool { return r == -1 }

// IsCharFound reports whether r is a character length.
func IsCharFound(r int) bool { return r > 0 }

// EncLength trusts the encoding's length probe. Use it only on bytes
// already known to be 7BIT or VALID; otherwise the result may be negative.
func EncLength(enc encoding.Encoding, b []byte, p, end int) int {
	return enc.Length(b, p, end)
}

// Length is the recovering length: malformed or truncated input is
// treated as a pseudo-character of the encoding's minimum width, clamped
// to the bytes remaining. It never returns a non-positive value for p < end.
func Length(enc encoding.Encoding, b []byte, p, end int) int {
	n := enc.Length(b, p, end)
	if IsCharFound(n) && n <= end-p {
		return n
	}
	return min(enc.MinLength(), end-p)
}

// PreciseLength reports the character length at p, or NeedMore/invalid.
func PreciseLength(enc encoding.Encoding, b []byte, p, end int) int {
	if p >= end {
		return NeedMore(1)
	}
	n := enc.Length(b, p, end)
	if n > end-p {
		return NeedMore(n - (end - p))
	}
	return n
}

// CharacterLength returns the byte length of the character at p, using cr
// to skip validation. For BROKEN and UNKNOWN input, recover selects
// between Length (never fails) and PreciseLength (reports problems).
func CharacterLength(enc encoding.Encoding, cr coderange.CodeRange, b []byte, p, end int, recover bool) int {
	switch cr {
	case coderange.SevenBit:
		return 1
	case coderange.Valid:
		return validCharacterLength(enc, b, p, end)
	default:
		if recover {
			return Length(enc, b, p, end)
		}
		return PreciseLength(enc, b, p, end)
	}
}

func validCharacterLength(enc encoding.Encoding, b []byte, p, end int) int {
	switch {
	case enc.IsUTF8():
		return encoding.CharWidth(b[p])
	case enc.IsASCIICompatible():
		if b[p] < 0x80 {
			return 1
		}
		return EncLength(enc, b, p, end)
	case enc.IsFixedWidth():
		return enc.MinLength()
	default:
		return EncLength(enc, b, p, end)
	}
}

const highBits = 0x8080808080808080

// SearchNonASCII returns the index of the first byte >= 0x80 in b[p:end],
// or -1. It tests eight bytes per step.
func SearchNonASCII(b []byte, p, end int) int {
	for ; end-p >= 8; p += 8 {
		if w := binary.LittleEndian.Uint64(b[p:]) & highBits; w != 0 {
			return p + bits.TrailingZeros64(w)/8
		}
	}
	for ; p < end; p++ {
		if b[p] >= 0x80 {
			return p
		}
	}
	return -1
}

// IsASCIIOnly reports whether every byte of b is below 0x80.
func IsASCIIOnly(b []byte) bool {
	return SearchNonASCII(b, 0, len(b)) < 0
}

// StrLength counts the characters in b[p:e]. cr may be Unknown.
func StrLength(enc encoding.Encoding, b []byte, p, e int, cr coderange.CodeRange) int {
	if enc.IsFixedWidth() {
		return (e - p + enc.MinLength() - 1) / enc.MinLength()
	}

	c := 0
	if enc.IsASCIICompatible() {
		trusted := cr == coderange.SevenBit || cr == coderange.Valid
		for p < e {
			if b[p] < 0x80 {
				q := SearchNonASCII(b, p, e)
				if q < 0 {
					return c + (e - p)
				}
				c += q - p
				p = q
			}
			p += CharacterLength(enc, cr, b, p, e, !trusted)
			c++
		}
		return c
	}

	for ; p < e; c++ {
		p += CharacterLength(enc, cr, b, p, e, true)
	}
	return c
}

// Classify scans v[start:end] once and returns its code range and
// character count. Malformed units count as one character each and
// scanning continues past them, so broken strings stay iterable.
func Classify(enc encoding.Encoding, v byteview.View, start, end int) coderange.Attributes {
	b := v.SliceRange(start, end).Raw()
	switch {
	case enc.IsASCIICompatible():
		return classifyASCIICompatible(enc, b)
	case enc.IsFixedWidth():
		return classifyFixedWidth(enc, b)
	default:
		return classifyGeneric(enc, b)
	}
}

// ClassifyBytes is Classify over a whole byte slice.
func ClassifyBytes(enc encoding.Encoding, b []byte) coderange.Attributes {
	return Classify(enc, byteview.New(b), 0, len(b))
}

func finish(cr coderange.CodeRange, n int) coderange.Attributes {
	if cr == coderange.Unknown {
		cr = coderange.SevenBit
	}
	return coderange.Attributes{CodeRange: cr, CharacterLength: n}
}

func classifyASCIICompatible(enc encoding.Encoding, b []byte) coderange.Attributes {
	cr := coderange.Unknown
	c, p, end := 0, 0, len(b)
	for p < end {
		if b[p] < 0x80 {
			q := SearchNonASCII(b, p, end)
			if q < 0 {
				return finish(cr, c+(end-p))
			}
			c += q - p
			p = q
		}
		if cl := PreciseLength(enc, b, p, end); cl > 0 {
			if cr != coderange.Broken {
				cr = coderange.Valid
			}
			p += cl
		} else {
			cr = coderange.Broken
			p += min(enc.MinLength(), end-p)
		}
		c++
	}
	return finish(cr, c)
}

// classifyFixedWidth counts ceil(len/width) characters and validates each
// unit; a trailing partial unit is broken.
func classifyFixedWidth(enc encoding.Encoding, b []byte) coderange.Attributes {
	w := enc.MinLength()
	n := (len(b) + w - 1) / w
	if len(b) == 0 {
		return finish(coderange.Unknown, 0)
	}
	cr := coderange.Valid
	for p := 0; p < len(b); p += w {
		if PreciseLength(enc, b, p, len(b)) <= 0 {
			cr = coderange.Broken
			break
		}
	}
	return coderange.Attributes{CodeRange: cr, CharacterLength: n}
}

func classifyGeneric(enc encoding.Encoding, b []byte) coderange.Attributes {
	cr := coderange.Unknown
	c, p, end := 0, 0, len(b)
	for ; p < end; c++ {
		if cl := PreciseLength(enc, b, p, end); cl > 0 {
			if cr != coderange.Broken {
				cr = coderange.Valid
			}
			p += cl
		} else {
			cr = coderange.Broken
			p += min(enc.MinLength(), end-p)
		}
	}
	return finish(cr, c)
}
