package encoding

import (
	"encoding/binary"
	"unicode/utf16"
)

type utf16Encoding struct {
	info
	order binary.ByteOrder
}

func newUTF16(name string, order binary.ByteOrder) *utf16Encoding {
	return &utf16Encoding{
		info: info{
			name:    name,
			minLen:  2,
			maxLen:  4,
			unicode: true,
			ctype:   unicodeCType,
		},
		order: order,
	}
}

// UTF-16 in both byte orders.
var (
	UTF16LE Encoding = newUTF16("UTF-16LE", binary.LittleEndian)
	UTF16BE Encoding = newUTF16("UTF-16BE", binary.BigEndian)
)

func (e *utf16Encoding) unit(b []byte, p int) uint16 {
	return e.order.Uint16(b[p : p+2])
}

func isLead(u uint16) bool  { return u >= 0xd800 && u <= 0xdbff }
func isTrail(u uint16) bool { return u >= 0xdc00 && u <= 0xdfff }

func (e *utf16Encoding) Length(b []byte, p, end int) int {
	if end-p < 2 {
		return needMore(2 - max(end-p, 0))
	}
	u := e.unit(b, p)
	switch {
	case isTrail(u):
		return invalid
	case isLead(u):
		if end-p < 4 {
			return needMore(4 - (end - p))
		}
		if !isTrail(e.unit(b, p+2)) {
			return invalid
		}
		return 4
	}
	return 2
}

func (e *utf16Encoding) MbcToCode(b []byte, p, end int) int {
	u := e.unit(b, p)
	if isLead(u) && end-p >= 4 {
		return int(utf16.DecodeRune(rune(u), rune(e.unit(b, p+2))))
	}
	return int(u)
}

func (e *utf16Encoding) CodeToMbcLength(code int) int {
	switch {
	case code < 0 || code > 0x10ffff:
		return invalid
	case code >= 0xd800 && code <= 0xdfff:
		return invalid
	case code > 0xffff:
		return 4
	}
	return 2
}

func (e *utf16Encoding) CodeToMbc(code int, dst []byte) int {
	if code > 0xffff {
		r1, r2 := utf16.EncodeRune(rune(code))
		e.order.PutUint16(dst, uint16(r1))
		e.order.PutUint16(dst[2:], uint16(r2))
		return 4
	}
	e.order.PutUint16(dst, uint16(code))
	return 2
}

func (e *utf16Encoding) PrevCharHead(b []byte, start, p, end int) int {
	if p <= start {
		return -1
	}
	return e.LeftAdjustCharHead(b, start, p-1, end)
}

func (e *utf16Encoding) LeftAdjustCharHead(b []byte, start, p, end int) int {
	q := p - (p-start)%2
	if q+2 > end {
		return q
	}
	if isTrail(e.unit(b, q)) && q-2 >= start && isLead(e.unit(b, q-2)) {
		return q - 2
	}
	return q
}

func (e *utf16Encoding) CaseMap(flags *CaseFlags, src, dst []byte) int {
	return mapUnicodeUnits(e, flags, src, dst)
}

// mapUnicodeUnits case maps src for a Unicode encoding that is not
// ASCII compatible, re-encoding each mapped rune with enc.
func mapUnicodeUnits(enc Encoding, flags *CaseFlags, src, dst []byte) int {
	n := 0
	for p := 0; p < len(src); {
		l := enc.Length(src, p, len(src))
		if l <= 0 {
			n += copy(dst[n:], src[p:])
			break
		}
		code := enc.MbcToCode(src, p, p+l)
		mapped := mapRune(*flags, rune(code))
		if mapped != string(rune(code)) {
			*flags |= CaseModified
		}
		for _, r := range mapped {
			w := enc.CodeToMbcLength(int(r))
			if w <= 0 || n+w > len(dst) {
				break
			}
			n += enc.CodeToMbc(int(r), dst[n:])
		}
		p += l
	}
	return n
}
