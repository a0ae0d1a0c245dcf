package strsupport

import (
	"fmt"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
)

// CodePoint decodes the character at b[p:end]. cr lets already classified
// input skip validation; Broken and Unknown input is measured precisely,
// so a malformed or truncated character is an error rather than a guess.
func CodePoint(enc encoding.Encoding, cr coderange.CodeRange, b []byte, p, end int) (int, error) {
	if p >= end {
		return 0, ErrEmptyString
	}
	if cl := CharacterLength(enc, cr, b, p, end, false); cl <= 0 {
		return 0, &InvalidByteSequenceError{Encoding: enc, Offset: p}
	}
	return enc.MbcToCode(b, p, end), nil
}

// PreciseCodePoint is CodePoint returning -1 instead of an error.
func PreciseCodePoint(enc encoding.Encoding, cr coderange.CodeRange, b []byte, p, end int) int {
	if p >= end {
		return -1
	}
	if CharacterLength(enc, cr, b, p, end, false) > 0 {
		return enc.MbcToCode(b, p, end)
	}
	return -1
}

// CodeLength returns the encoded width of c in enc. The result is
// negative for code points enc cannot represent.
func CodeLength(enc encoding.Encoding, c int) int {
	return enc.CodeToMbcLength(c)
}

// CodeToMbc encodes c in enc.
func CodeToMbc(enc encoding.Encoding, c int) ([]byte, error) {
	n := enc.CodeToMbcLength(c)
	if n <= 0 {
		return nil, fmt.Errorf("%w: U+%04X out of char range in %s", ErrInvalidCodePoint, c, enc.Name())
	}
	buf := make([]byte, n)
	return buf[:enc.CodeToMbc(c, buf)], nil
}

// EncAscget returns the ASCII character at b[p:end] and its byte width.
// It returns c == -1 when p is at end or the character is not ASCII.
func EncAscget(enc encoding.Encoding, cr coderange.CodeRange, b []byte, p, end int) (c, n int) {
	if end <= p {
		return -1, 0
	}
	if enc.IsASCIICompatible() {
		if b[p] >= 0x80 {
			return -1, 0
		}
		return int(b[p]), 1
	}
	l := CharacterLength(enc, cr, b, p, end, false)
	if !IsCharFound(l) {
		return -1, 0
	}
	c = enc.MbcToCode(b, p, end)
	if c < 0 || c >= 0x80 {
		return -1, 0
	}
	return c, l
}

// EncCodepointLength decodes the character at b[p:end] and returns it
// together with its byte width.
func EncCodepointLength(enc encoding.Encoding, cr coderange.CodeRange, b []byte, p, end int) (c, n int, err error) {
	if end <= p {
		return 0, 0, ErrEmptyString
	}
	r := CharacterLength(enc, cr, b, p, end, false)
	if !IsCharFound(r) {
		return 0, 0, lengthError(enc, r, p)
	}
	return enc.MbcToCode(b, p, end), r, nil
}
