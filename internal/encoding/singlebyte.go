package encoding

import (
	"unicode/utf8"

	gdenc "github.com/gdamore/encoding"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// singleByte is an ASCII-compatible encoding with one byte per character.
// Code points are byte values; toRune maps them to Unicode for
// classification and case mapping.
type singleByte struct {
	info
	toRune   [256]rune
	fromRune map[rune]byte
	// strict marks undefined bytes as invalid characters.
	strict bool
	// binary restricts classification and case mapping to ASCII.
	binary bool
}

func newSingleByte(name string, table [256]rune, strict, binary bool) *singleByte {
	e := &singleByte{
		info: info{
			name:      name,
			minLen:    1,
			maxLen:    1,
			asciiComp: true,
		},
		toRune:   table,
		fromRune: make(map[rune]byte, 256),
		strict:   strict,
		binary:   binary,
	}
	for b, r := range table {
		if r >= 0 {
			if _, dup := e.fromRune[r]; !dup {
				e.fromRune[r] = byte(b)
			}
		}
	}
	e.ctype = e.classify
	return e
}

// asciiTable maps 0x00-0x7F to themselves and leaves the rest undefined.
func asciiTable() [256]rune {
	var t [256]rune
	for i := range t {
		t[i] = -1
		if i < 0x80 {
			t[i] = rune(i)
		}
	}
	return t
}

// decodeTable builds a byte to rune table by running every byte through
// the decoder of d. Bytes the decoder rejects or replaces are undefined.
func decodeTable(d xenc.Encoding) [256]rune {
	var t [256]rune
	dec := d.NewDecoder()
	for i := range t {
		t[i] = -1
		out, err := dec.Bytes([]byte{byte(i)})
		if err != nil || len(out) == 0 {
			continue
		}
		r, size := utf8.DecodeRune(out)
		if r == utf8.RuneError || size != len(out) {
			continue
		}
		t[i] = r
	}
	return t
}

func (e *singleByte) Length(b []byte, p, end int) int {
	if p >= end {
		return needMore(1)
	}
	if e.strict && e.toRune[b[p]] < 0 {
		return invalid
	}
	return 1
}

func (e *singleByte) MbcToCode(b []byte, p, end int) int {
	return int(b[p])
}

func (e *singleByte) CodeToMbcLength(code int) int {
	if code < 0 || code > 0xff || (e.strict && e.toRune[code] < 0) {
		return invalid
	}
	return 1
}

func (e *singleByte) CodeToMbc(code int, dst []byte) int {
	dst[0] = byte(code)
	return 1
}

func (e *singleByte) PrevCharHead(b []byte, start, p, end int) int {
	return singleBytePrevCharHead(start, p)
}

func (e *singleByte) LeftAdjustCharHead(b []byte, start, p, end int) int {
	return p
}

func (e *singleByte) classify(code int, t CType) bool {
	if code < 0 || code > 0xff {
		return false
	}
	if e.binary || code < 0x80 {
		return asciiCType(code, t)
	}
	r := e.toRune[code]
	if r < 0 {
		return false
	}
	return unicodeCType(int(r), t)
}

func (e *singleByte) CaseMap(flags *CaseFlags, src, dst []byte) int {
	if e.binary || flags.Has(CaseASCIIOnly) {
		return asciiCaseMap(flags, src, dst)
	}
	n := 0
	for _, c := range src {
		if c < 0x80 {
			n += asciiCaseMap(flags, []byte{c}, dst[n:])
			continue
		}
		r := e.toRune[c]
		if r < 0 {
			dst[n] = c
			n++
			continue
		}
		w, ok := e.encodeMapped(mapRune(*flags, r), dst[n:])
		if !ok {
			dst[n] = c
			n++
			continue
		}
		if w != 1 || dst[n] != c {
			*flags |= CaseModified
		}
		n += w
	}
	return n
}

// encodeMapped writes the runes of s into dst. It fails when a rune has
// no byte in this encoding.
func (e *singleByte) encodeMapped(s string, dst []byte) (int, bool) {
	n := 0
	for _, r := range s {
		b, ok := e.fromRune[r]
		if !ok || n >= len(dst) {
			return 0, false
		}
		dst[n] = b
		n++
	}
	return n, true
}

// Built-in single-byte encodings.
var (
	// ASCII8BIT is the binary encoding: every byte is a valid character
	// and only ASCII letters have case.
	ASCII8BIT Encoding = newSingleByte("ASCII-8BIT", asciiTable(), false, true)

	// USASCII rejects bytes at or above 0x80.
	USASCII Encoding = newSingleByte("US-ASCII", decodeTable(gdenc.ASCII), true, false)

	ISO8859_1   Encoding = newSingleByte("ISO-8859-1", decodeTable(gdenc.ISO8859_1), false, false)
	ISO8859_15  Encoding = newSingleByte("ISO-8859-15", decodeTable(charmap.ISO8859_15), false, false)
	Windows1252 Encoding = newSingleByte("Windows-1252", decodeTable(charmap.Windows1252), false, false)
	KOI8R       Encoding = newSingleByte("KOI8-R", decodeTable(charmap.KOI8R), false, false)
)
