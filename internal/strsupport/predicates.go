package strsupport

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// IsASCIILower reports whether c is 'a' through 'z'.
func IsASCIILower(c byte) bool { return 'a' <= c && c <= 'z' }

// IsASCIIUpper reports whether c is 'A' through 'Z'.
func IsASCIIUpper(c byte) bool { return 'A' <= c && c <= 'Z' }

// IsASCIIAlpha reports whether c is an ASCII letter.
func IsASCIIAlpha(c byte) bool { return IsASCIILower(c) || IsASCIIUpper(c) }

// IsASCIISpace reports whether c is ' ', \t, \n, \v, \f or \r.
func IsASCIISpace(c int) bool { return c == ' ' || ('\t' <= c && c <= '\r') }

// IsASCIIPrintable reports whether c is a printable ASCII character.
func IsASCIIPrintable(c int) bool { return c == ' ' || ('!' <= c && c <= '~') }

// IsASCIICodepoint reports whether c lies in 0..127.
func IsASCIICodepoint(c int) bool { return c >= 0 && c < 0x80 }

func hexValue(c byte) (int, bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// ScanHex reads up to n hexadecimal digits from b[p:] and returns their
// value. Scanning stops at the first non-digit.
func ScanHex(b []byte, p, n int) int {
	v := 0
	for ; n > 0 && p < len(b); n, p = n-1, p+1 {
		d, ok := hexValue(b[p])
		if !ok {
			break
		}
		v = v<<4 + d
	}
	return v
}

// HexLength counts the hexadecimal digits ScanHex would consume.
func HexLength(b []byte, p, n int) int {
	l := 0
	for ; n > 0 && p < len(b); n, p = n-1, p+1 {
		if _, ok := hexValue(b[p]); !ok {
			break
		}
		l++
	}
	return l
}

// ScanOct reads up to n octal digits from b[p:] and returns their value.
func ScanOct(b []byte, p, n int) int {
	v := 0
	for ; n > 0 && p < len(b) && '0' <= b[p] && b[p] <= '7'; n, p = n-1, p+1 {
		v = v<<3 + int(b[p]-'0')
	}
	return v
}

// OctLength counts the octal digits ScanOct would consume.
func OctLength(b []byte, p, n int) int {
	l := 0
	for ; n > 0 && p < len(b) && '0' <= b[p] && b[p] <= '7'; n, p = n-1, p+1 {
		l++
	}
	return l
}

// EscapedCharFormat returns the printf format used to show code point c
// inside an inspected string. Unicode encodings use \u escapes, all
// others \x escapes.
func EscapedCharFormat(c int, unicode bool) string {
	u := uint32(c)
	if unicode {
		switch {
		case u < 0x7f && IsASCIIPrintable(c):
			return "%c"
		case u < 0x10000:
			return `\u%04X`
		default:
			return `\u{%X}`
		}
	}
	if u < 0x100 {
		return `\x%02X`
	}
	return `\x{%X}`
}

// EscapeChar formats c with EscapedCharFormat.
func EscapeChar(c int, unicode bool) string {
	return fmt.Sprintf(EscapedCharFormat(c, unicode), uint32(c))
}

// CaseCmp compares the first n bytes of a[p:] and b[q:] as unsigned bytes
// and returns -1, 0 or 1.
func CaseCmp(a []byte, p int, b []byte, q int, n int) int {
	i := 0
	for i < n && a[p+i] == b[q+i] {
		i++
	}
	if i < n {
		if a[p+i] > b[q+i] {
			return 1
		}
		return -1
	}
	return 0
}

// GraphemeLength counts the extended grapheme clusters of UTF-8 text.
func GraphemeLength(b []byte) int {
	return uniseg.GraphemeClusterCount(string(b))
}

// DisplayWidth returns the monospace display width of UTF-8 text.
func DisplayWidth(b []byte) int {
	return uniseg.StringWidth(string(b))
}
