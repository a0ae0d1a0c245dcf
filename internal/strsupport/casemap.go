package strsupport

import (
	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
)

// caseMapBufferSize bounds the mapped form of a single character.
const caseMapBufferSize = 32

// Buffer is a growable byte buffer edited in place by the complex case
// mapping and squeeze operations.
//
// Bytes returns the live contents and may change identity after Replace
// or SetLength, so callers fetch it again after every edit.
type Buffer interface {
	Bytes() []byte
	Len() int
	// SetLength truncates the buffer to n bytes.
	SetLength(n int)
	// Replace substitutes src for the n bytes at off, growing or
	// shrinking the buffer as needed.
	Replace(off, n int, src []byte)
}

// CaseOptions are the mapping options accepted by the complex case
// mapping functions.
type CaseOptions struct {
	// Fold selects case folding for DowncaseComplex.
	Fold bool
	// Turkic applies the Turkish and Azeri dotted/dotless i rules.
	Turkic bool
	// ASCIIOnly leaves non-ASCII characters unchanged.
	ASCIIOnly bool
}

func (o CaseOptions) flags() encoding.CaseFlags {
	var f encoding.CaseFlags
	if o.Fold {
		f |= encoding.CaseFold
	}
	if o.Turkic {
		f |= encoding.CaseFoldTurkishAzeri
	}
	if o.ASCIIOnly {
		f |= encoding.CaseASCIIOnly
	}
	return f
}

// asciiSimple flips every ASCII byte selected by flip. It returns v itself
// when nothing matched and a modified copy otherwise. enc must be ASCII
// compatible.
func asciiSimple(enc encoding.Encoding, cr coderange.CodeRange, v byteview.View, flip func(s int, c byte) bool) byteview.View {
	b := v.Raw()
	modified := false
	for s, end := 0, len(b); s < end; {
		if flip(s, b[s]) {
			if !modified {
				v = v.Clone()
				b = v.Raw()
				modified = true
			}
			b[s] ^= 0x20
			s++
			continue
		}
		s += CharacterLength(enc, cr, b, s, end, true)
	}
	return v
}

// UpcaseASCIISimple upcases the ASCII letters of v.
func UpcaseASCIISimple(enc encoding.Encoding, cr coderange.CodeRange, v byteview.View) byteview.View {
	return asciiSimple(enc, cr, v, func(_ int, c byte) bool { return IsASCIILower(c) })
}

// DowncaseASCIISimple downcases the ASCII letters of v.
func DowncaseASCIISimple(enc encoding.Encoding, cr coderange.CodeRange, v byteview.View) byteview.View {
	return asciiSimple(enc, cr, v, func(_ int, c byte) bool { return IsASCIIUpper(c) })
}

// SwapcaseASCIISimple swaps the case of the ASCII letters of v.
func SwapcaseASCIISimple(enc encoding.Encoding, cr coderange.CodeRange, v byteview.View) byteview.View {
	return asciiSimple(enc, cr, v, func(_ int, c byte) bool { return IsASCIIAlpha(c) })
}

// CapitalizeASCIISimple upcases the first byte of v when it is an ASCII
// letter and downcases the remaining ASCII letters.
func CapitalizeASCIISimple(enc encoding.Encoding, cr coderange.CodeRange, v byteview.View) byteview.View {
	return asciiSimple(enc, cr, v, func(s int, c byte) bool {
		if s == 0 {
			return IsASCIILower(c)
		}
		return IsASCIIUpper(c)
	})
}

// caseMapChar maps the character c at s through the encoding and writes
// the result back through Replace. It returns the width
// of the mapped form and whether it differs from the original.
func caseMapChar(enc encoding.Encoding, c int, buf Buffer, s int, flags *encoding.CaseFlags, scratch []byte) (int, bool) {
	b := buf.Bytes()
	clen := enc.CodeToMbcLength(c)
	*flags &^= encoding.CaseModified
	n := enc.CaseMap(flags, b[s:s+clen], scratch)
	if !flags.Has(encoding.CaseModified) {
		return clen, false
	}
	// Replace even at equal width: the mapped bytes may change the code
	// range, as when ß becomes SS.
	buf.Replace(s, clen, scratch[:n])
	return n, true
}

// complexCase walks buf one character at a time. ascii selects the ASCII
// bytes flipped directly; mapped selects the other characters handed to
// the encoding's case mapping. next is called after each character so
// capitalization can switch modes.
type complexCase struct {
	enc     encoding.Encoding
	cr      coderange.CodeRange
	flags   encoding.CaseFlags
	turkic  bool
	ascii   func(c byte) bool
	mapped  func(c int) bool
	next    func(cc *complexCase)
	scratch [caseMapBufferSize]byte
}

func (cc *complexCase) run(buf Buffer) (bool, error) {
	modified := false
	fast := !cc.turkic && cc.enc.IsASCIICompatible()
	for s := 0; s < buf.Len(); {
		b := buf.Bytes()
		if fast && cc.ascii(b[s]) {
			b[s] ^= 0x20
			modified = true
			s++
		} else {
			c, err := CodePoint(cc.enc, cc.cr, b, s, len(b))
			if err != nil {
				return modified, err
			}
			if cc.mapped(c) {
				n, changed := caseMapChar(cc.enc, c, buf, s, &cc.flags, cc.scratch[:])
				modified = modified || changed
				s += n
			} else {
				s += CodeLength(cc.enc, c)
			}
		}
		if cc.next != nil {
			cc.next(cc)
		}
	}
	return modified, nil
}

// UpcaseComplex upcases every character of buf, growing it when a mapped
// form is wider. It reports whether anything changed.
func UpcaseComplex(enc encoding.Encoding, cr coderange.CodeRange, buf Buffer, opts CaseOptions) (bool, error) {
	cc := &complexCase{
		enc:    enc,
		cr:     cr,
		flags:  opts.flags() | encoding.CaseUpcase,
		turkic: opts.Turkic,
		ascii:  IsASCIILower,
		mapped: enc.IsLower,
	}
	return cc.run(buf)
}

// DowncaseComplex downcases, or with opts.Fold case folds, every character
// of buf.
func DowncaseComplex(enc encoding.Encoding, cr coderange.CodeRange, buf Buffer, opts CaseOptions) (bool, error) {
	cc := &complexCase{
		enc:    enc,
		cr:     cr,
		flags:  opts.flags() | encoding.CaseDowncase,
		turkic: opts.Turkic,
		ascii:  IsASCIIUpper,
		mapped: func(c int) bool { return opts.Fold || enc.IsUpper(c) },
	}
	return cc.run(buf)
}

// SwapcaseComplex swaps the case of every cased character of buf.
func SwapcaseComplex(enc encoding.Encoding, cr coderange.CodeRange, buf Buffer, opts CaseOptions) (bool, error) {
	cc := &complexCase{
		enc:    enc,
		cr:     cr,
		flags:  opts.flags() | encoding.CaseUpcase | encoding.CaseDowncase,
		turkic: opts.Turkic,
		ascii:  IsASCIIAlpha,
		mapped: func(c int) bool { return enc.IsUpper(c) || enc.IsLower(c) },
	}
	return cc.run(buf)
}

// CapitalizeComplex titlecases the first character of buf and downcases
// the rest.
func CapitalizeComplex(enc encoding.Encoding, cr coderange.CodeRange, buf Buffer, opts CaseOptions) (bool, error) {
	base := opts.flags()
	cc := &complexCase{
		enc:    enc,
		cr:     cr,
		flags:  base | encoding.CaseUpcase | encoding.CaseTitlecase,
		turkic: opts.Turkic,
		ascii:  IsASCIILower,
		mapped: enc.IsLower,
	}
	cc.next = func(cc *complexCase) {
		cc.flags = base | encoding.CaseDowncase
		cc.ascii = IsASCIIUpper
		cc.mapped = enc.IsUpper
		cc.next = nil
	}
	return cc.run(buf)
}

// MultiByteCaseCmp compares a and b ignoring ASCII case and returns -1, 0
// or 1. Non-ASCII characters compare bytewise; a shorter character sorts
// first when the shared prefix is equal.
func MultiByteCaseCmp(enc encoding.Encoding, a []byte, acr coderange.CodeRange, b []byte, bcr coderange.CodeRange) int {
	p, end := 0, len(a)
	q, qend := 0, len(b)
	compat := enc.IsASCIICompatible()

	for p < end && q < qend {
		var c, oc int
		if compat {
			c, oc = int(a[p]), int(b[q])
		} else {
			c = PreciseCodePoint(enc, acr, a, p, end)
			oc = PreciseCodePoint(enc, bcr, b, q, qend)
		}

		var cl, ocl int
		if compat && IsASCIICodepoint(c) && IsASCIICodepoint(oc) {
			uc, uoc := toUpperASCII(byte(c)), toUpperASCII(byte(oc))
			if uc != uoc {
				if uc < uoc {
					return -1
				}
				return 1
			}
			cl, ocl = 1, 1
		} else {
			cl = CharacterLength(enc, acr, a, p, end, true)
			ocl = CharacterLength(enc, bcr, b, q, qend, true)
			if ret := CaseCmp(a, p, b, q, min(cl, ocl)); ret != 0 {
				return ret
			}
			if cl != ocl {
				if cl < ocl {
					return -1
				}
				return 1
			}
		}
		p += cl
		q += ocl
	}

	switch {
	case end-p == qend-q:
		return 0
	case end-p > qend-q:
		return 1
	}
	return -1
}

func toUpperASCII(c byte) byte {
	if IsASCIILower(c) {
		return c ^ 0x20
	}
	return c
}
