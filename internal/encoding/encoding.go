// Package encoding describes the character encodings ropes are tagged with.
//
// An Encoding is an opaque descriptor. It knows how wide its characters
// are, how to measure the character at a byte position, how to convert
// between bytes and code points, how to classify code points, and how to
// change their case. Scanning algorithms never parse encoding names; they
// receive an Encoding (or look one up by index in a Registry).
//
// Length follows the multibyte length conventions used throughout ropecore:
//
//	n > 0      a character of n bytes was found
//	n == -1    the bytes at p are invalid
//	n < -1     the bytes at p are a valid prefix; -1-n more bytes are needed
package encoding

// CType is a character class understood by IsCodeCType.
type CType uint8

// Character classes.
const (
	CTypeAlpha CType = iota
	CTypeDigit
	CTypeAlnum
	CTypeUpper
	CTypeLower
	CTypeSpace
	CTypePrint
	CTypeGraph
	CTypePunct
	CTypeCntrl
	CTypeXDigit
	CTypeWord
)

// CaseFlags selects the mapping performed by CaseMap. CaseMap sets
// CaseModified when it changed at least one character.
type CaseFlags uint32

// Case mapping flags.
const (
	CaseUpcase CaseFlags = 1 << iota
	CaseDowncase
	CaseTitlecase
	CaseFold
	CaseFoldTurkishAzeri
	CaseASCIIOnly
	CaseModified
)

// Has reports whether all bits of x are set in f.
func (f CaseFlags) Has(x CaseFlags) bool {
	return f&x == x
}

// Encoding is the descriptor consumed by the scanning algorithms.
type Encoding interface {
	// Name returns the canonical name, e.g. "UTF-8".
	Name() string
	// Index returns the position of the encoding in its Registry.
	Index() int

	MinLength() int
	MaxLength() int
	IsFixedWidth() bool
	IsASCIICompatible() bool
	IsDummy() bool
	IsSingleByte() bool
	IsUnicode() bool
	IsUTF8() bool

	// Length measures the character at b[p:end] using the multibyte
	// length conventions described in the package documentation.
	Length(b []byte, p, end int) int
	// MbcToCode decodes the character at b[p:end]. The caller has
	// already checked the bytes with Length.
	MbcToCode(b []byte, p, end int) int
	// CodeToMbcLength returns the encoded width of code, or a negative
	// value when code cannot be represented.
	CodeToMbcLength(code int) int
	// CodeToMbc writes code into dst and returns the number of bytes
	// written. dst must have room for CodeToMbcLength(code) bytes.
	CodeToMbc(code int, dst []byte) int
	// PrevCharHead returns the start of the character preceding p, or -1
	// when p is at start.
	PrevCharHead(b []byte, start, p, end int) int
	// LeftAdjustCharHead returns the start of the character containing p.
	LeftAdjustCharHead(b []byte, start, p, end int) int

	IsCodeCType(code int, ctype CType) bool
	IsUpper(code int) bool
	IsLower(code int) bool
	IsAlpha(code int) bool
	IsDigit(code int) bool
	IsAlnum(code int) bool
	IsSpace(code int) bool
	IsPrint(code int) bool

	// CaseMap maps every character of src into dst according to flags and
	// returns the number of bytes written.
	CaseMap(flags *CaseFlags, src []byte, dst []byte) int
}

// Multibyte length results.
const invalid = -1

func needMore(n int) int { return -1 - n }

// IsASCII reports whether b is a 7-bit byte.
func IsASCII(b byte) bool {
	return b < 0x80
}
