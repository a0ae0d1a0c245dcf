package rope

import (
	"fmt"

	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/convert"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/strsupport"
)

// CaseMode selects a case mapping.
type CaseMode uint8

const (
	CaseUp CaseMode = iota
	CaseDown
	CaseSwap
	CaseCapitalize
)

func (m CaseMode) String() string {
	switch m {
	case CaseUp:
		return "upcase"
	case CaseDown:
		return "downcase"
	case CaseSwap:
		return "swapcase"
	case CaseCapitalize:
		return "capitalize"
	}
	return fmt.Sprintf("CaseMode(%d)", uint8(m))
}

// ParseCaseMode converts a case mapping name.
func ParseCaseMode(s string) (CaseMode, error) {
	for m := CaseUp; m <= CaseCapitalize; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return CaseUp, fmt.Errorf("unknown case mode %q", s)
}

func (m CaseMode) simple() func(encoding.Encoding, coderange.CodeRange, byteview.View) byteview.View {
	switch m {
	case CaseDown:
		return strsupport.DowncaseASCIISimple
	case CaseSwap:
		return strsupport.SwapcaseASCIISimple
	case CaseCapitalize:
		return strsupport.CapitalizeASCIISimple
	}
	return strsupport.UpcaseASCIISimple
}

func (m CaseMode) complex() func(encoding.Encoding, coderange.CodeRange, strsupport.Buffer, strsupport.CaseOptions) (bool, error) {
	switch m {
	case CaseDown:
		return strsupport.DowncaseComplex
	case CaseSwap:
		return strsupport.SwapcaseComplex
	case CaseCapitalize:
		return strsupport.CapitalizeComplex
	}
	return strsupport.UpcaseComplex
}

// asLeaf returns r as an immutable leaf, copying when r is not one.
func asLeaf(r Rope) *Leaf {
	switch r := r.(type) {
	case *Leaf:
		return r
	case *NativeRope:
		return r.ToLeaf()
	}
	return NewLeaf(r.Bytes().Clone(), r.Encoding(), coderange.Unknown, -1)
}

// MapCase returns r with its case mapped. When nothing changes the result
// holds r's bytes, and is r itself for a *Leaf.
//
// 7-bit content, and any content under opts.ASCIIOnly, takes an ASCII
// fast path in ASCII compatible encodings.
func MapCase(r Rope, mode CaseMode, opts strsupport.CaseOptions) (*Leaf, error) {
	enc := r.Encoding()
	cr := r.CodeRange()
	if enc.IsASCIICompatible() && (cr == coderange.SevenBit || opts.ASCIIOnly) {
		v := r.Bytes()
		out := mode.simple()(enc, cr, v)
		if out.SameStorage(v) || out.Len() == 0 {
			return asLeaf(r), nil
		}
		return NewLeaf(out, enc, cr, r.CharacterLength()), nil
	}

	b := DefaultBuilderPool.Get(enc, r.ByteLength())
	defer DefaultBuilderPool.Put(b)
	b.Append(r.Bytes().Raw(), cr)

	modified, err := mode.complex()(enc, cr, b, opts)
	if err != nil {
		return nil, err
	}
	if !modified {
		return asLeaf(r), nil
	}
	return b.Build(), nil
}

// MapCaseInPlace maps the case of m in place and reports whether any
// byte changed.
func MapCaseInPlace(m *MutableLeaf, mode CaseMode, opts strsupport.CaseOptions) (bool, error) {
	return mode.complex()(m.Encoding(), m.CodeRange(), m.Buffer(), opts)
}

// Upcase is MapCase with CaseUp.
func Upcase(r Rope, opts strsupport.CaseOptions) (*Leaf, error) {
	return MapCase(r, CaseUp, opts)
}

// Downcase is MapCase with CaseDown.
func Downcase(r Rope, opts strsupport.CaseOptions) (*Leaf, error) {
	return MapCase(r, CaseDown, opts)
}

// Swapcase is MapCase with CaseSwap.
func Swapcase(r Rope, opts strsupport.CaseOptions) (*Leaf, error) {
	return MapCase(r, CaseSwap, opts)
}

// Capitalize is MapCase with CaseCapitalize.
func Capitalize(r Rope, opts strsupport.CaseOptions) (*Leaf, error) {
	return MapCase(r, CaseCapitalize, opts)
}

func text(r Rope) strsupport.Text {
	return strsupport.Text{Bytes: r.Bytes().Raw(), CodeRange: r.CodeRange()}
}

func fromText(t *strsupport.Text, enc encoding.Encoding) *Leaf {
	return NewLeaf(byteview.New(t.Bytes), enc, t.CodeRange, -1)
}

// Translate replaces the characters of r named by src with the
// corresponding characters of repl, as String#tr does. With squeeze set,
// runs of the same replaced character collapse into one, as String#tr_s
// does. An unchanged result is r itself.
func Translate(r, src, repl Rope, squeeze bool) (*Leaf, error) {
	enc := r.Encoding()
	t, err := strsupport.Translate(text(r), enc, text(src), text(repl), enc, squeeze)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return asLeaf(r), nil
	}
	return fromText(t, enc), nil
}

func buildTable(enc encoding.Encoding, specs []Rope) (*strsupport.TrTable, *strsupport.TrTables, error) {
	texts := make([]strsupport.Text, len(specs))
	for i, s := range specs {
		texts[i] = text(s)
	}
	return strsupport.BuildTable(enc, texts...)
}

// Count returns the number of characters of r in the intersection of the
// character sets named by specs.
func Count(r Rope, specs ...Rope) (int, error) {
	if len(specs) == 0 {
		return 0, nil
	}
	table, tables, err := buildTable(r.Encoding(), specs)
	if err != nil {
		return 0, err
	}
	return strsupport.Count(text(r), r.Encoding(), table, tables)
}

// Delete removes the characters of r in the intersection of the
// character sets named by specs.
func Delete(r Rope, specs ...Rope) (*Leaf, error) {
	if len(specs) == 0 {
		return asLeaf(r), nil
	}
	table, tables, err := buildTable(r.Encoding(), specs)
	if err != nil {
		return nil, err
	}
	t, err := strsupport.Delete(text(r), r.Encoding(), table, tables)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return asLeaf(r), nil
	}
	return fromText(t, r.Encoding()), nil
}

// Squeeze collapses runs of a repeated character into one. With specs,
// only characters in their intersection are squeezed.
func Squeeze(r Rope, specs ...Rope) (*Leaf, error) {
	enc := r.Encoding()
	cr := r.CodeRange()

	b := DefaultBuilderPool.Get(enc, r.ByteLength())
	defer DefaultBuilderPool.Put(b)
	b.Append(r.Bytes().Raw(), cr)

	var modified bool
	if len(specs) == 0 {
		var err error
		if modified, err = strsupport.SqueezeMultiByte(b, cr, nil, nil, enc, false); err != nil {
			return nil, err
		}
	} else {
		table, tables, err := buildTable(enc, specs)
		if err != nil {
			return nil, err
		}
		if enc.IsSingleByte() || (cr == coderange.SevenBit && enc.IsASCIICompatible()) {
			modified = strsupport.SqueezeSingleByte(b, table)
		} else if modified, err = strsupport.SqueezeMultiByte(b, cr, table, tables, enc, true); err != nil {
			return nil, err
		}
	}
	if !modified {
		return asLeaf(r), nil
	}
	return NewLeaf(byteview.New(b.Bytes()).Clone(), enc, cr, -1), nil
}

// Succ returns the successor of r, as String#succ does.
func Succ(r Rope) *Leaf {
	enc := r.Encoding()
	return NewLeaf(byteview.New(strsupport.Succ(enc, r.Bytes().Raw())), enc, coderange.Unknown, -1)
}

// ToInteger parses r as an integer, as String#to_i does in lenient mode
// and Integer() does in strict mode.
func ToInteger(r Rope, radix int, strict bool) (convert.Integer, error) {
	if enc := r.Encoding(); !enc.IsASCIICompatible() {
		return convert.Integer{}, fmt.Errorf("%w: %s", ErrIncompatibleEncoding, enc.Name())
	}
	return convert.BytesToInteger(r.Bytes(), radix, strict)
}

// CodePointAt decodes the character at byteOffset.
func CodePointAt(r Rope, byteOffset int) (int, error) {
	return strsupport.CodePoint(r.Encoding(), r.CodeRange(), r.Bytes().Raw(), byteOffset, r.ByteLength())
}

// CaseCompare compares a and b ignoring ASCII case and returns -1, 0 or
// 1. ok is false when the encodings are incompatible: they differ and
// neither rope is 7-bit content of an ASCII compatible encoding.
func CaseCompare(a, b Rope) (c int, ok bool) {
	enc, ok := compatibleEncoding(a, b)
	if !ok {
		return 0, false
	}
	return strsupport.MultiByteCaseCmp(enc, a.Bytes().Raw(), a.CodeRange(), b.Bytes().Raw(), b.CodeRange()), true
}

func compatibleEncoding(a, b Rope) (encoding.Encoding, bool) {
	ea, eb := a.Encoding(), b.Encoding()
	switch {
	case ea == eb:
		return ea, true
	case !ea.IsASCIICompatible() || !eb.IsASCIICompatible():
		return nil, false
	case b.CodeRange() == coderange.SevenBit:
		return ea, true
	case a.CodeRange() == coderange.SevenBit:
		return eb, true
	}
	return nil, false
}

// GraphemeLength counts user-perceived characters. Only UTF-8 content is
// segmented; other encodings fall back to CharacterLength.
func GraphemeLength(r Rope) int {
	if r.Encoding().IsUTF8() && r.CodeRange() != coderange.Broken {
		return strsupport.GraphemeLength(r.Bytes().Raw())
	}
	return r.CharacterLength()
}

// DisplayWidth returns the monospace display width of UTF-8 content, or
// the character length for other encodings.
func DisplayWidth(r Rope) int {
	if r.Encoding().IsUTF8() && r.CodeRange() != coderange.Broken {
		return strsupport.DisplayWidth(r.Bytes().Raw())
	}
	return r.CharacterLength()
}
