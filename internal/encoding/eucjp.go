package encoding

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// eucJP code points are the big-endian integer value of the character's
// bytes (0xA4A2 for "あ"). Classification and case mapping go through
// Unicode.
type eucJP struct {
	info
}

// EUCJP is the EUC-JP encoding.
var EUCJP Encoding = newEUCJP()

func newEUCJP() *eucJP {
	e := &eucJP{
		info: info{
			name:      "EUC-JP",
			minLen:    1,
			maxLen:    3,
			asciiComp: true,
		},
	}
	e.ctype = e.classify
	return e
}

func isEUCTrail(c byte) bool { return c >= 0xa1 && c <= 0xfe }

func (e *eucJP) Length(b []byte, p, end int) int {
	if p >= end {
		return needMore(1)
	}
	c := b[p]
	var n int
	switch {
	case c < 0x80:
		return 1
	case c == 0x8e:
		n = 2
	case c == 0x8f:
		n = 3
	case isEUCTrail(c):
		n = 2
	default:
		return invalid
	}
	for i := 1; i < n; i++ {
		if p+i >= end {
			return needMore(n - i)
		}
		if !isEUCTrail(b[p+i]) {
			return invalid
		}
	}
	return n
}

func (e *eucJP) MbcToCode(b []byte, p, end int) int {
	n := e.Length(b, p, end)
	if n <= 0 {
		return int(b[p])
	}
	code := 0
	for i := 0; i < n; i++ {
		code = code<<8 | int(b[p+i])
	}
	return code
}

func (e *eucJP) CodeToMbcLength(code int) int {
	switch {
	case code < 0:
		return invalid
	case code&0xff0000 != 0:
		return 3
	case code&0xff00 != 0:
		return 2
	case code < 0x80:
		return 1
	}
	return invalid
}

func (e *eucJP) CodeToMbc(code int, dst []byte) int {
	n := e.CodeToMbcLength(code)
	for i := n - 1; i >= 0; i-- {
		dst[i] = byte(code)
		code >>= 8
	}
	return n
}

func (e *eucJP) PrevCharHead(b []byte, start, p, end int) int {
	if p <= start {
		return -1
	}
	return e.LeftAdjustCharHead(b, start, p-1, end)
}

// LeftAdjustCharHead scans forward from start; EUC-JP trail bytes are
// also valid lead bytes, so the head cannot be found by looking back.
func (e *eucJP) LeftAdjustCharHead(b []byte, start, p, end int) int {
	q := start
	for q < p {
		n := e.Length(b, q, end)
		if n <= 0 {
			n = 1
		}
		if q+n > p {
			break
		}
		q += n
	}
	return q
}

// toRune converts an EUC-JP code point into Unicode, or -1.
func (e *eucJP) toRune(code int) rune {
	if code < 0x80 {
		return rune(code)
	}
	var buf [3]byte
	n := e.CodeToMbc(code, buf[:])
	out, err := japanese.EUCJP.NewDecoder().Bytes(buf[:n])
	if err != nil {
		return -1
	}
	r, size := utf8.DecodeRune(out)
	if r == utf8.RuneError || size != len(out) {
		return -1
	}
	return r
}

func (e *eucJP) fromRune(r rune) (int, bool) {
	if r < 0x80 {
		return int(r), true
	}
	out, err := japanese.EUCJP.NewEncoder().Bytes([]byte(string(r)))
	if err != nil || len(out) < 2 {
		return 0, false
	}
	code := 0
	for _, c := range out {
		code = code<<8 | int(c)
	}
	return code, true
}

func (e *eucJP) classify(code int, t CType) bool {
	if code < 0x80 {
		return asciiCType(code, t)
	}
	r := e.toRune(code)
	if r < 0 {
		return false
	}
	return unicodeCType(int(r), t)
}

func (e *eucJP) CaseMap(flags *CaseFlags, src, dst []byte) int {
	n := 0
	for p := 0; p < len(src); {
		if src[p] < 0x80 {
			n += asciiCaseMap(flags, src[p:p+1], dst[n:])
			p++
			continue
		}
		l := e.Length(src, p, len(src))
		if l <= 0 {
			n += copy(dst[n:], src[p:])
			break
		}
		code := e.MbcToCode(src, p, p+l)
		r := e.toRune(code)
		if r < 0 || flags.Has(CaseASCIIOnly) {
			n += copy(dst[n:], src[p:p+l])
			p += l
			continue
		}
		start := n
		ok := true
		for _, m := range mapRune(*flags, r) {
			c, found := e.fromRune(m)
			if !found || n+e.CodeToMbcLength(c) > len(dst) {
				ok = false
				break
			}
			n += e.CodeToMbc(c, dst[n:])
		}
		if !ok {
			n = start + copy(dst[start:], src[p:p+l])
		} else if string(dst[start:n]) != string(src[p:p+l]) {
			*flags |= CaseModified
		}
		p += l
	}
	return n
}
