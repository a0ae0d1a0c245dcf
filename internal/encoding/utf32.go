package encoding

import "encoding/binary"

type utf32Encoding struct {
	info
	order binary.ByteOrder
}

func newUTF32(name string, order binary.ByteOrder) *utf32Encoding {
	return &utf32Encoding{
		info: info{
			name:    name,
			minLen:  4,
			maxLen:  4,
			unicode: true,
			ctype:   unicodeCType,
		},
		order: order,
	}
}

// UTF-32 in both byte orders. Both are fixed width.
var (
	UTF32LE Encoding = newUTF32("UTF-32LE", binary.LittleEndian)
	UTF32BE Encoding = newUTF32("UTF-32BE", binary.BigEndian)
)

func (e *utf32Encoding) Length(b []byte, p, end int) int {
	if end-p < 4 {
		return needMore(4 - max(end-p, 0))
	}
	c := e.order.Uint32(b[p : p+4])
	if c > 0x10ffff || (c >= 0xd800 && c <= 0xdfff) {
		return invalid
	}
	return 4
}

func (e *utf32Encoding) MbcToCode(b []byte, p, end int) int {
	return int(e.order.Uint32(b[p : p+4]))
}

func (e *utf32Encoding) CodeToMbcLength(code int) int {
	if code < 0 || code > 0x10ffff || (code >= 0xd800 && code <= 0xdfff) {
		return invalid
	}
	return 4
}

func (e *utf32Encoding) CodeToMbc(code int, dst []byte) int {
	e.order.PutUint32(dst, uint32(code))
	return 4
}

func (e *utf32Encoding) PrevCharHead(b []byte, start, p, end int) int {
	if p <= start {
		return -1
	}
	return e.LeftAdjustCharHead(b, start, p-1, end)
}

func (e *utf32Encoding) LeftAdjustCharHead(b []byte, start, p, end int) int {
	return p - (p-start)%4
}

func (e *utf32Encoding) CaseMap(flags *CaseFlags, src, dst []byte) int {
	return mapUnicodeUnits(e, flags, src, dst)
}
