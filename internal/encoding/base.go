package encoding

import "unicode"

// info carries the descriptor fields shared by every built-in encoding.
type info struct {
	name      string
	index     int
	minLen    int
	maxLen    int
	asciiComp bool
	dummy     bool
	unicode   bool
	utf8      bool

	// ctype classifies a code point of this encoding.
	ctype func(code int, t CType) bool
}

func (e *info) Name() string { return e.name }
func (e *info) Index() int { return e.index }
func (e *info) MinLength() int { return e.minLen }
func (e *info) MaxLength() int { return e.maxLen }
func (e *info) IsFixedWidth() bool { return e.minLen == e.maxLen }
func (e *info) IsASCIICompatible() bool { return e.asciiComp }
func (e *info) IsDummy() bool { return e.dummy }
func (e *info) IsSingleByte() bool { return e.maxLen == 1 }
func (e *info) IsUnicode() bool { return e.unicode }
func (e *info) IsUTF8() bool { return e.utf8 }
func (e *info) String() string { return e.name }
func (e *info) IsUpper(code int) bool { return e.ctype(code, CTypeUpper) }
func (e *info) IsLower(code int) bool { return e.ctype(code, CTypeLower) }
func (e *info) IsAlpha(code int) bool { return e.ctype(code, CTypeAlpha) }
func (e *info) IsDigit(code int) bool { return e.ctype(code, CTypeDigit) }
func (e *info) IsAlnum(code int) bool { return e.ctype(code, CTypeAlnum) }
func (e *info) IsSpace(code int) bool { return e.ctype(code, CTypeSpace) }
func (e *info) IsPrint(code int) bool { return e.ctype(code, CTypePrint) }
func (e *info) IsCodeCType(c int, t CType) bool { return e.ctype(c, t) }

// asciiCType classifies code points below 0x80 and rejects everything else.
func asciiCType(code int, t CType) bool {
	if code < 0 || code >= 0x80 {
		return false
	}
	c := byte(code)
	switch t {
	case CTypeAlpha:
		return isASCIIUpper(c) || isASCIILower(c)
	case CTypeDigit:
		return '0' <= c && c <= '9'
	case CTypeAlnum:
		return asciiCType(code, CTypeAlpha) || asciiCType(code, CTypeDigit)
	case CTypeUpper:
		return isASCIIUpper(c)
	case CTypeLower:
		return isASCIILower(c)
	case CTypeSpace:
		return c == ' ' || ('\t' <= c && c <= '\r')
	case CTypePrint:
		return ' ' <= c && c <= '~'
	case CTypeGraph:
		return '!' <= c && c <= '~'
	case CTypePunct:
		return asciiCType(code, CTypeGraph) && !asciiCType(code, CTypeAlnum)
	case CTypeCntrl:
		return c < ' ' || c == 0x7f
	case CTypeXDigit:
		return asciiCType(code, CTypeDigit) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
	case CTypeWord:
		return asciiCType(code, CTypeAlnum) || c == '_'
	}
	return false
}

// unicodeCType classifies any Unicode scalar value.
func unicodeCType(code int, t CType) bool {
	if code < 0 || code > unicode.MaxRune {
		return false
	}
	if code < 0x80 {
		return asciiCType(code, t)
	}
	r := rune(code)
	switch t {
	case CTypeAlpha:
		return unicode.IsLetter(r) || unicode.Is(unicode.Other_Alphabetic, r)
	case CTypeDigit:
		return unicode.Is(unicode.Nd, r)
	case CTypeAlnum:
		return unicodeCType(code, CTypeAlpha) || unicodeCType(code, CTypeDigit)
	case CTypeUpper:
		return unicode.IsUpper(r)
	case CTypeLower:
		return unicode.IsLower(r)
	case CTypeSpace:
		return unicode.IsSpace(r)
	case CTypePrint:
		return unicode.IsPrint(r) || r == ' '
	case CTypeGraph:
		return unicode.IsGraphic(r) && !unicode.IsSpace(r)
	case CTypePunct:
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	case CTypeCntrl:
		return unicode.IsControl(r)
	case CTypeXDigit:
		return false
	case CTypeWord:
		return unicodeCType(code, CTypeAlnum) || unicode.Is(unicode.Pc, r) || unicode.Is(unicode.Mn, r)
	}
	return false
}

func isASCIIUpper(c byte) bool { return 'A' <= c && c <= 'Z' }
func isASCIILower(c byte) bool { return 'a' <= c && c <= 'z' }

// asciiCaseMap flips ASCII letters according to flags and copies every
// other byte through.
func asciiCaseMap(flags *CaseFlags, src, dst []byte) int {
	n := 0
	for _, c := range src {
		if n >= len(dst) {
			break
		}
		if m, ok := asciiMapByte(*flags, c); ok {
			c = m
			*flags |= CaseModified
		}
		dst[n] = c
		n++
	}
	return n
}

func asciiMapByte(flags CaseFlags, c byte) (byte, bool) {
	switch {
	case isASCIIUpper(c) && flags&(CaseDowncase|CaseFold) != 0:
		return c ^ 0x20, true
	case isASCIILower(c) && flags.Has(CaseUpcase):
		return c ^ 0x20, true
	}
	return c, false
}

// singleBytePrevCharHead serves every encoding whose characters are one
// byte wide.
func singleBytePrevCharHead(start, p int) int {
	if p <= start {
		return -1
	}
	return p - 1
}
