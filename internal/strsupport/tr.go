package strsupport

import (
	"bytes"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
)

// TransSize is the number of code points held in the direct table; larger
// code points live in the overflow maps of TrTables.
const TransSize = 256

// Text is a byte string together with its code range. Transliteration
// takes its operands and returns its results as Text.
type Text struct {
	Bytes     []byte
	CodeRange coderange.CodeRange
}

// resolved returns t with an Unknown code range replaced by a scan.
func (t Text) resolved(enc encoding.Encoding) Text {
	if t.CodeRange == coderange.Unknown {
		t.CodeRange = ClassifyBytes(enc, t.Bytes).CodeRange
	}
	return t
}

// TrTable marks the code points below TransSize selected by a set of
// specs. The final entry answers for every code point not found in the
// overflow maps.
type TrTable [TransSize + 1]bool

// TrTables holds the selection of code points at or above TransSize.
type TrTables struct {
	del   map[int]struct{}
	noDel map[int]struct{}
}

// TrCursor walks the characters named by a tr spec such as "a-z" or
// "\\-x", expanding ranges one code point at a time.
type TrCursor struct {
	enc  encoding.Encoding
	cr   coderange.CodeRange
	buf  []byte
	p    int
	pend int
	now  int
	max  int
	gen  bool
}

// NewTrCursor returns a cursor positioned at the start of spec.
func NewTrCursor(enc encoding.Encoding, spec Text) *TrCursor {
	return &TrCursor{enc: enc, cr: spec.CodeRange, buf: spec.Bytes, pend: len(spec.Bytes)}
}

// Next returns the next code point of the spec, or -1 when exhausted.
// Code points the encoding cannot represent are skipped inside ranges.
func (tr *TrCursor) Next() (int, error) {
	if !tr.gen {
		return tr.nextPart()
	}
	for {
		tr.now++
		if tr.enc.CodeToMbcLength(tr.now) > 0 {
			break
		}
		if tr.now == tr.max {
			tr.gen = false
			return tr.nextPart()
		}
	}
	if tr.now < tr.max {
		return tr.now, nil
	}
	tr.gen = false
	return tr.max, nil
}

func (tr *TrCursor) nextPart() (int, error) {
	if tr.p == tr.pend {
		return -1, nil
	}
	if c, n := EncAscget(tr.enc, tr.cr, tr.buf, tr.p, tr.pend); c == '\\' && tr.p+n < tr.pend {
		tr.p += n
	}
	now, n, err := EncCodepointLength(tr.enc, tr.cr, tr.buf, tr.p, tr.pend)
	if err != nil {
		return 0, err
	}
	tr.now = now
	tr.p += n

	c, n := EncAscget(tr.enc, tr.cr, tr.buf, tr.p, tr.pend)
	if c != '-' || tr.p+n >= tr.pend {
		return tr.now, nil
	}
	tr.p += n
	end, n, err := EncCodepointLength(tr.enc, tr.cr, tr.buf, tr.p, tr.pend)
	if err != nil {
		return 0, err
	}
	tr.p += n
	if tr.now > end {
		return 0, &InvalidRangeError{Start: tr.now, End: end}
	}
	tr.gen = true
	tr.max = end
	return tr.now, nil
}

// negated reports whether spec starts with a '^' that complements it, and
// the width of that marker.
func negated(enc encoding.Encoding, spec Text) (bool, int) {
	if len(spec.Bytes) <= 1 {
		return false, 0
	}
	c, n := EncAscget(enc, spec.CodeRange, spec.Bytes, 0, len(spec.Bytes))
	return c == '^', n
}

// SetupTable intersects table and tables with the set named by spec. The
// first spec initialises them; later specs narrow the selection, as for
// "count", "delete" and "squeeze" with several arguments. A nil tables is
// allocated.
func SetupTable(spec Text, table *TrTable, tables *TrTables, first bool, enc encoding.Encoding) (*TrTables, error) {
	tr := NewTrCursor(enc, spec)
	cflag, n := negated(enc, spec)
	if cflag {
		tr.p += n
	}

	if first {
		for i := range TransSize {
			table[i] = true
		}
		table[TransSize] = cflag
	} else if table[TransSize] && !cflag {
		table[TransSize] = false
	}

	if tables == nil {
		tables = &TrTables{}
	}

	var (
		buf         []bool
		set, prev   map[int]struct{}
		initialised bool
	)
	for {
		c, err := tr.Next()
		if err != nil {
			return nil, err
		}
		if c == -1 {
			break
		}
		if c < TransSize {
			if buf == nil {
				buf = make([]bool, TransSize)
				for i := range buf {
					buf[i] = cflag
				}
			}
			buf[c] = !cflag
			continue
		}

		if !initialised && (first || tables.del != nil || table[TransSize]) {
			initialised = true
			if cflag {
				prev = tables.noDel
				set = prev
				if set == nil {
					set = make(map[int]struct{}, 8)
				}
				tables.noDel = set
			} else {
				set = make(map[int]struct{}, 8)
				prev = tables.del
				tables.del = set
			}
		}
		if set == nil {
			continue
		}
		if prev == nil || cflag {
			set[c] = struct{}{}
		} else if _, ok := prev[c]; ok {
			set[c] = struct{}{}
		}
	}

	for i := range TransSize {
		if buf != nil {
			table[i] = table[i] && buf[i]
		} else {
			table[i] = table[i] && cflag
		}
	}

	if set == nil && !cflag {
		tables.del = nil
	}
	return tables, nil
}

// BuildTable runs SetupTable over each spec in turn.
func BuildTable(enc encoding.Encoding, specs ...Text) (*TrTable, *TrTables, error) {
	table := new(TrTable)
	var tables *TrTables
	for i, spec := range specs {
		var err error
		if tables, err = SetupTable(spec, table, tables, i == 0, enc); err != nil {
			return nil, nil, err
		}
	}
	return table, tables, nil
}

// TrFind reports whether c is selected by table and tables.
func TrFind(c int, table *TrTable, tables *TrTables) bool {
	if c < TransSize {
		return table[c]
	}
	if tables != nil {
		if tables.del != nil {
			if _, ok := tables.del[c]; ok {
				if _, skip := tables.noDel[c]; !skip {
					return true
				}
			}
		} else if _, ok := tables.noDel[c]; ok {
			return false
		}
	}
	return table[TransSize]
}

// Count returns the number of characters of s selected by the table.
func Count(s Text, enc encoding.Encoding, table *TrTable, tables *TrTables) (int, error) {
	b := s.Bytes
	compat := enc.IsASCIICompatible()
	count := 0
	for p, end := 0, len(b); p < end; {
		if compat && b[p] < 0x80 {
			if table[b[p]] {
				count++
			}
			p++
			continue
		}
		c, err := CodePoint(enc, s.CodeRange, b, p, end)
		if err != nil {
			return 0, err
		}
		if TrFind(c, table, tables) {
			count++
		}
		p += CodeLength(enc, c)
	}
	return count, nil
}

// Delete returns a copy of s without the characters selected by the
// table, or nil when nothing was removed.
func Delete(s Text, enc encoding.Encoding, table *TrTable, tables *TrTables) (*Text, error) {
	b := bytes.Clone(s.Bytes)
	compat := enc.IsASCIICompatible()
	cr := coderange.Valid
	if compat {
		cr = coderange.SevenBit
	}

	modified := false
	t := 0
	for p, end := 0, len(b); p < end; {
		if compat && b[p] < 0x80 {
			if table[b[p]] {
				modified = true
			} else {
				b[t] = b[p]
				t++
			}
			p++
			continue
		}
		c, err := CodePoint(enc, s.CodeRange, b, p, end)
		if err != nil {
			return nil, err
		}
		cl := CodeLength(enc, c)
		if TrFind(c, table, tables) {
			modified = true
		} else {
			if t != p {
				enc.CodeToMbc(c, b[t:])
			}
			t += cl
			if cr == coderange.SevenBit {
				cr = coderange.Valid
			}
		}
		p += cl
	}

	if !modified {
		return nil, nil
	}
	return &Text{Bytes: b[:t], CodeRange: cr}, nil
}

// SqueezeSingleByte collapses runs of a repeated byte selected by table
// into one byte. It reports whether buf changed.
func SqueezeSingleByte(buf Buffer, table *TrTable) bool {
	b := buf.Bytes()
	save := -1
	t := 0
	for _, c := range b {
		if int(c) != save || !table[c] {
			b[t] = c
			save = int(c)
			t++
		}
	}
	if t != len(b) {
		buf.SetLength(t)
		return true
	}
	return false
}

// SqueezeMultiByte collapses runs of a repeated character. With isArg
// only characters selected by the table are squeezed; otherwise every
// run is.
func SqueezeMultiByte(buf Buffer, cr coderange.CodeRange, table *TrTable, tables *TrTables, enc encoding.Encoding, isArg bool) (bool, error) {
	b := buf.Bytes()
	compat := enc.IsASCIICompatible()
	save := -1
	t := 0
	for s, send := 0, len(b); s < send; {
		if c := int(b[s]); compat && c < 0x80 {
			if c != save || (isArg && !table[c]) {
				b[t] = byte(c)
				save = c
				t++
			}
			s++
			continue
		}
		c, err := CodePoint(enc, cr, b, s, send)
		if err != nil {
			return false, err
		}
		cl := CodeLength(enc, c)
		if c != save || (isArg && !TrFind(c, table, tables)) {
			if t != s {
				enc.CodeToMbc(c, b[t:])
			}
			save = c
			t += cl
		}
		s += cl
	}

	if t != len(b) {
		buf.SetLength(t)
		return true, nil
	}
	return false, nil
}

func checkIfASCII(c int, cr coderange.CodeRange) coderange.CodeRange {
	if cr == coderange.SevenBit && !IsASCIICodepoint(c) {
		return coderange.Valid
	}
	return cr
}

// translation is the compiled form of a source/replacement spec pair.
type translation struct {
	trans  [TransSize]int
	hash   map[int]int
	cflag  bool
	last   int
	single bool
}

func (x *translation) lookup(c int) int {
	if c < TransSize {
		return x.trans[c]
	}
	if x.hash != nil {
		r, ok := x.hash[c]
		switch {
		case !ok && x.cflag:
			return x.last
		case !ok || x.cflag:
			return -1
		}
		return r
	}
	if x.cflag {
		return x.last
	}
	return -1
}

func compile(src, repl Text, enc encoding.Encoding, single bool) (*translation, error) {
	x := &translation{single: single}
	trSrc := NewTrCursor(enc, src)
	if neg, n := negated(enc, src); neg {
		x.cflag = true
		trSrc.p += n
	}
	trRepl := NewTrCursor(enc, repl)

	if x.cflag {
		for i := range x.trans {
			x.trans[i] = 1
		}
		for {
			c, err := trSrc.Next()
			if err != nil {
				return nil, err
			}
			if c == -1 {
				break
			}
			if c < TransSize {
				x.trans[c] = -1
			} else {
				if x.hash == nil {
					x.hash = make(map[int]int)
				}
				x.hash[c] = 1
			}
		}
		for {
			c, err := trRepl.Next()
			if err != nil {
				return nil, err
			}
			if c == -1 {
				break
			}
		}
		x.last = trRepl.now
		for i := range x.trans {
			if x.trans[i] != -1 {
				x.trans[i] = x.last
			}
		}
		return x, nil
	}

	for i := range x.trans {
		x.trans[i] = -1
	}
	for {
		c, err := trSrc.Next()
		if err != nil {
			return nil, err
		}
		if c == -1 {
			break
		}
		r, err := trRepl.Next()
		if err != nil {
			return nil, err
		}
		if r == -1 {
			r = trRepl.now
		}
		if c < TransSize {
			x.trans[c] = r
			if CodeLength(enc, r) != 1 {
				x.single = false
			}
		} else {
			if x.hash == nil {
				x.hash = make(map[int]int)
			}
			x.hash[c] = r
		}
	}
	return x, nil
}

// Translate replaces each character of self found in src with the
// corresponding character of repl, as String#tr does; with squeeze set,
// runs of the same replacement collapse to one, as String#tr_s does. e1
// is the encoding of self and enc the encoding of the result.
//
// Translate returns nil when nothing changed. Empty src or repl are the
// caller's responsibility.
func Translate(self Text, e1 encoding.Encoding, src, repl Text, enc encoding.Encoding, squeeze bool) (*Text, error) {
	self = self.resolved(e1)
	cr := self.CodeRange
	single := cr == coderange.SevenBit || e1.IsSingleByte()

	x, err := compile(src, repl, enc, single)
	if err != nil {
		return nil, err
	}

	if cr == coderange.Valid && enc.IsASCIICompatible() {
		cr = coderange.SevenBit
	}

	switch {
	case squeeze:
		return translateSqueeze(self, e1, enc, x, cr)
	case enc.IsSingleByte() || (x.single && x.hash == nil):
		return translateSingleByte(self, x, cr), nil
	default:
		return translateMultiByte(self, e1, enc, x, cr)
	}
}

func translateSingleByte(self Text, x *translation, cr coderange.CodeRange) *Text {
	b := bytes.Clone(self.Bytes)
	modified := false
	for s, c := range b {
		if x.trans[c] != -1 {
			if x.cflag {
				b[s] = byte(x.last)
			} else {
				b[s] = byte(x.trans[c])
			}
			modified = true
		}
		cr = checkIfASCII(int(b[s]), cr)
	}
	if !modified {
		return nil
	}
	return &Text{Bytes: b, CodeRange: cr}
}

func translateMultiByte(self Text, e1, enc encoding.Encoding, x *translation, cr coderange.CodeRange) (*Text, error) {
	sb := self.Bytes
	out := make([]byte, 0, len(sb)+len(sb)/5)
	var scratch [8]byte
	modified := false

	for s, send := 0, len(sb); s < send; {
		c0, err := CodePoint(e1, coderange.Unknown, sb, s, send)
		if err != nil {
			return nil, err
		}
		clen := CodeLength(e1, c0)

		c := x.lookup(c0)
		if c != -1 {
			modified = true
		} else {
			c = c0
		}
		n := enc.CodeToMbc(c, scratch[:])
		if !modified && enc != e1 && !bytes.Equal(sb[s:s+clen], scratch[:n]) {
			modified = true
		}
		out = append(out, scratch[:n]...)
		cr = checkIfASCII(c, cr)
		s += clen
	}

	if !modified {
		return nil, nil
	}
	return &Text{Bytes: out, CodeRange: cr}, nil
}

func translateSqueeze(self Text, e1, enc encoding.Encoding, x *translation, cr coderange.CodeRange) (*Text, error) {
	sb := self.Bytes
	out := make([]byte, 0, len(sb))
	var scratch [8]byte
	modified := false
	save := -1

	for s, send := 0, len(sb); s < send; {
		c0, err := CodePoint(e1, coderange.Unknown, sb, s, send)
		if err != nil {
			return nil, err
		}
		clen := CodeLength(e1, c0)
		from := sb[s : s+clen]
		s += clen

		c := x.lookup(c0)
		mayModify := false
		if c != -1 {
			if save == c {
				cr = checkIfASCII(c, cr)
				continue
			}
			save = c
			modified = true
		} else {
			save = -1
			c = c0
			mayModify = enc != e1
		}

		n := enc.CodeToMbc(c, scratch[:])
		if mayModify && !bytes.Equal(from, scratch[:n]) {
			modified = true
		}
		out = append(out, scratch[:n]...)
		cr = checkIfASCII(c, cr)
	}

	if !modified {
		return nil, nil
	}
	return &Text{Bytes: out, CodeRange: cr}, nil
}
