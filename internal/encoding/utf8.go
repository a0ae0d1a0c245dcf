package encoding

import "unicode/utf8"

type utf8Encoding struct {
	info
}

// UTF8 is the UTF-8 encoding. Overlong forms, surrogates and code points
// above U+10FFFF are invalid.
var UTF8 Encoding = &utf8Encoding{
	info: info{
		name:      "UTF-8",
		minLen:    1,
		maxLen:    4,
		asciiComp: true,
		unicode:   true,
		utf8:      true,
		ctype:     unicodeCType,
	},
}

// Length checks the lead byte and each continuation byte against the
// ranges allowed in its position, so a truncated but otherwise valid
// prefix reports how many bytes are missing.
func (e *utf8Encoding) Length(b []byte, p, end int) int {
	if p >= end {
		return needMore(1)
	}
	c := b[p]
	if c < 0x80 {
		return 1
	}

	var n int
	lo, hi := byte(0x80), byte(0xbf)
	switch {
	case c < 0xc2:
		return invalid
	case c < 0xe0:
		n = 2
	case c < 0xf0:
		n = 3
		if c == 0xe0 {
			lo = 0xa0
		} else if c == 0xed {
			hi = 0x9f
		}
	case c < 0xf5:
		n = 4
		if c == 0xf0 {
			lo = 0x90
		} else if c == 0xf4 {
			hi = 0x8f
		}
	default:
		return invalid
	}

	for i := 1; i < n; i++ {
		if p+i >= end {
			return needMore(n - i)
		}
		x := b[p+i]
		if i == 1 {
			if x < lo || x > hi {
				return invalid
			}
		} else if x < 0x80 || x > 0xbf {
			return invalid
		}
	}
	return n
}

// CharWidth returns the width implied by a UTF-8 lead byte, without
// looking at continuation bytes. Invalid lead bytes report 1.
func CharWidth(lead byte) int {
	switch {
	case lead < 0xc2:
		return 1
	case lead < 0xe0:
		return 2
	case lead < 0xf0:
		return 3
	case lead < 0xf5:
		return 4
	}
	return 1
}

func (e *utf8Encoding) MbcToCode(b []byte, p, end int) int {
	r, _ := utf8.DecodeRune(b[p:end])
	return int(r)
}

func (e *utf8Encoding) CodeToMbcLength(code int) int {
	switch {
	case code < 0:
		return invalid
	case code < 0x80:
		return 1
	case code < 0x800:
		return 2
	case code < 0x10000:
		if code >= 0xd800 && code <= 0xdfff {
			return invalid
		}
		return 3
	case code <= 0x10ffff:
		return 4
	}
	return invalid
}

func (e *utf8Encoding) CodeToMbc(code int, dst []byte) int {
	return utf8.EncodeRune(dst, rune(code))
}

func (e *utf8Encoding) PrevCharHead(b []byte, start, p, end int) int {
	if p <= start {
		return -1
	}
	return e.LeftAdjustCharHead(b, start, p-1, end)
}

func (e *utf8Encoding) LeftAdjustCharHead(b []byte, start, p, end int) int {
	q := p
	for q > start && q > p-3 && !utf8.RuneStart(b[q]) {
		q--
	}
	if q != p && e.Length(b, q, end) < 0 {
		return p
	}
	if q != p && q+e.Length(b, q, end) <= p {
		return p
	}
	return q
}

func (e *utf8Encoding) CaseMap(flags *CaseFlags, src, dst []byte) int {
	turkic := flags.Has(CaseFoldTurkishAzeri)
	n := 0
	for p := 0; p < len(src); {
		if src[p] < 0x80 && !turkic {
			n += asciiCaseMap(flags, src[p:p+1], dst[n:])
			p++
			continue
		}
		r, size := utf8.DecodeRune(src[p:])
		if r == utf8.RuneError && size <= 1 {
			n += copy(dst[n:], src[p:p+1])
			p++
			continue
		}
		mapped := mapRune(*flags, r)
		if mapped != string(r) {
			*flags |= CaseModified
		}
		n += copy(dst[n:], mapped)
		p += size
	}
	return n
}
