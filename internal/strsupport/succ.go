package strsupport

import (
	"slices"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
)

// Neighbor is the outcome of stepping a character to its successor or
// predecessor in place.
type Neighbor uint8

// Stepping outcomes.
const (
	// NotChar means the bytes do not form a steppable character.
	NotChar Neighbor = iota
	// Found means the character was replaced by its neighbour.
	Found
	// Wrapped means the character overflowed and a carry is needed.
	Wrapped
)

// maxCharLen bounds the width of one character in any encoding.
const maxCharLen = 8

// Succ returns the successor of b, as String#succ computes it: the
// rightmost alphanumeric is incremented, carrying leftward through the
// alphanumeric run; a string without alphanumerics increments its
// rightmost character instead. b is not modified.
func Succ(enc encoding.Encoding, b []byte) []byte {
	if len(b) == 0 {
		return []byte{}
	}

	var carry [maxCharLen]byte
	carry[0] = 1
	carryP, carryLen := 0, 1

	buf := slices.Clone(b)
	end := len(buf)
	s := end

	neighbor := Found
	lastAlnum := -1
	alnumSeen := false
	for {
		if s = enc.PrevCharHead(buf, 0, s, end); s == -1 {
			break
		}
		if neighbor == NotChar && lastAlnum != -1 && alnumBoundary(buf[lastAlnum], buf[s]) {
			s = lastAlnum
			break
		}
		cl := CharacterLength(enc, coderange.Unknown, buf, s, end, false)
		if cl <= 0 {
			continue
		}
		switch neighbor = succAlnumChar(enc, buf, s, cl, carry[:]); neighbor {
		case NotChar:
			continue
		case Found:
			return buf
		case Wrapped:
			lastAlnum = s
		}
		alnumSeen = true
		carryP = s
		carryLen = cl
	}

	if !alnumSeen {
		s = end
		for {
			if s = enc.PrevCharHead(buf, 0, s, end); s == -1 {
				break
			}
			cl := CharacterLength(enc, coderange.Unknown, buf, s, end, false)
			if cl <= 0 {
				continue
			}
			if SuccChar(enc, buf, s, cl) == Found {
				return buf
			}
			if CharacterLength(enc, coderange.Unknown, buf, s, s+1, false) != cl {
				// wrapped to all zero bytes; step again to reach a valid char
				SuccChar(enc, buf, s, cl)
			}
			if !enc.IsASCIICompatible() {
				copy(carry[:], buf[s:s+cl])
				carryLen = cl
			}
			carryP = s
		}
	}

	return slices.Insert(buf, carryP, carry[:carryLen]...)
}

// alnumBoundary reports whether the ASCII characters last and c straddle
// a letter/digit boundary, which ends the carry run.
func alnumBoundary(last, c byte) bool {
	switch {
	case IsASCIIAlpha(last):
		return isASCIIDigit(c)
	case isASCIIDigit(last):
		return IsASCIIAlpha(c)
	}
	return false
}

func isASCIIDigit(c byte) bool { return '0' <= c && c <= '9' }

// SuccChar replaces the n-byte character at b[p:] with its successor.
// Wide fixed-width encodings step the code point; all others step the
// bytes, wrapping 0xff to 0 and skipping sequences that do not form a
// character of exactly n bytes.
func SuccChar(enc encoding.Encoding, b []byte, p, n int) Neighbor {
	if enc.MinLength() > 1 {
		if !IsCharFound(CharacterLength(enc, coderange.Unknown, b, p, p+n, false)) {
			return NotChar
		}
		c := enc.MbcToCode(b, p, p+n) + 1
		l := CodeLength(enc, c)
		if l <= 0 {
			return NotChar
		}
		if l != n {
			return Wrapped
		}
		enc.CodeToMbc(c, b[p:])
		if !IsCharFound(CharacterLength(enc, coderange.Unknown, b, p, p+n, false)) {
			return NotChar
		}
		return Found
	}

	for {
		i := n - 1
		for ; i >= 0 && b[p+i] == 0xff; i-- {
			b[p+i] = 0
		}
		if i < 0 {
			return Wrapped
		}
		b[p+i]++
		l := CharacterLength(enc, coderange.Unknown, b, p, p+n, false)
		if IsCharFound(l) {
			if l == n {
				return Found
			}
			fill(b[p+l:p+n], 0xff)
		}
		if IsInvalid(l) && i < n-1 {
			l2 := n - 1
			for ; l2 > 0; l2-- {
				if !IsInvalid(CharacterLength(enc, coderange.Unknown, b, p, p+l2, false)) {
					break
				}
			}
			fill(b[p+l2+1:p+n], 0xff)
		}
	}
}

// PredChar replaces the n-byte character at b[p:] with its predecessor.
// It mirrors SuccChar.
func PredChar(enc encoding.Encoding, b []byte, p, n int) Neighbor {
	if enc.MinLength() > 1 {
		if !IsCharFound(CharacterLength(enc, coderange.Unknown, b, p, p+n, false)) {
			return NotChar
		}
		c := enc.MbcToCode(b, p, p+n)
		if c == 0 {
			return NotChar
		}
		c--
		l := CodeLength(enc, c)
		if l <= 0 {
			return NotChar
		}
		if l != n {
			return Wrapped
		}
		enc.CodeToMbc(c, b[p:])
		if !IsCharFound(CharacterLength(enc, coderange.Unknown, b, p, p+n, false)) {
			return NotChar
		}
		return Found
	}

	for {
		i := n - 1
		for ; i >= 0 && b[p+i] == 0; i-- {
			b[p+i] = 0xff
		}
		if i < 0 {
			return Wrapped
		}
		b[p+i]--
		l := CharacterLength(enc, coderange.Unknown, b, p, p+n, false)
		if IsCharFound(l) {
			if l == n {
				return Found
			}
			fill(b[p+l:p+n], 0)
		}
		if !IsCharFound(l) && i < n-1 {
			l2 := n - 1
			for ; l2 > 0; l2-- {
				if !IsInvalid(CharacterLength(enc, coderange.Unknown, b, p, p+l2, false)) {
					break
				}
			}
			fill(b[p+l2+1:p+n], 0)
		}
	}
}

func fill(b []byte, c byte) {
	for i := range b {
		b[i] = c
	}
}

// succAlnumChar steps the alphanumeric character at b[p:p+n]. When the
// successor leaves the character's class (z, Z, 9) the character wraps
// to the first member of its class and carry receives the character to
// insert on overflow: "1" for digits, "a"/"A" for letters.
func succAlnumChar(enc encoding.Encoding, b []byte, p, n int, carry []byte) Neighbor {
	c := enc.MbcToCode(b, p, p+n)
	var ctype encoding.CType
	switch {
	case enc.IsDigit(c):
		ctype = encoding.CTypeDigit
	case enc.IsAlpha(c):
		ctype = encoding.CTypeAlpha
	default:
		return NotChar
	}

	var save [maxCharLen]byte
	copy(save[:], b[p:p+n])
	if SuccChar(enc, b, p, n) == Found && enc.IsCodeCType(enc.MbcToCode(b, p, p+n), ctype) {
		return Found
	}
	copy(b[p:], save[:n])

	// walk back to the first character of the class
	span := 1
	for {
		copy(save[:], b[p:p+n])
		if PredChar(enc, b, p, n) != Found || !enc.IsCodeCType(enc.MbcToCode(b, p, p+n), ctype) {
			copy(b[p:], save[:n])
			break
		}
		span++
	}
	if span == 1 {
		return NotChar
	}

	copy(carry, b[p:p+n])
	if ctype == encoding.CTypeDigit {
		SuccChar(enc, carry, 0, n)
	}
	return Wrapped
}
