package rope

import (
	"errors"
	"testing"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/convert"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/native"
	"github.com/dshills/ropecore/internal/strsupport"
)

func utf8Leaf(s string) *Leaf { return FromString(s, encoding.UTF8) }

func TestMapCase(t *testing.T) {
	tests := []struct {
		name  string
		mode  CaseMode
		opts  strsupport.CaseOptions
		input string
		want  string
		kind  Kind
	}{
		{"upcase ascii", CaseUp, strsupport.CaseOptions{}, "hello", "HELLO", KindASCIIOnly},
		{"downcase ascii", CaseDown, strsupport.CaseOptions{}, "HeLLo", "hello", KindASCIIOnly},
		{"swapcase ascii", CaseSwap, strsupport.CaseOptions{}, "aBc", "AbC", KindASCIIOnly},
		{"capitalize ascii", CaseCapitalize, strsupport.CaseOptions{}, "hELLO", "Hello", KindASCIIOnly},
		{"upcase grows", CaseUp, strsupport.CaseOptions{}, "straße", "STRASSE", KindASCIIOnly},
		{"downcase unicode", CaseDown, strsupport.CaseOptions{}, "ÀB", "àb", KindValid},
		{"capitalize unicode", CaseCapitalize, strsupport.CaseOptions{}, "éCOLE", "École", KindValid},
		{"ascii only", CaseUp, strsupport.CaseOptions{ASCIIOnly: true}, "héllo", "HéLLO", KindValid},
		{"ascii only broken", CaseUp, strsupport.CaseOptions{ASCIIOnly: true}, "a\xff", "A\xff", KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := utf8Leaf(tt.input)
			got, err := MapCase(in, tt.mode, tt.opts)
			if err != nil {
				t.Fatalf("MapCase: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
			if got.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", got.Kind(), tt.kind)
			}
			if in.String() != tt.input {
				t.Errorf("input changed to %q", in.String())
			}
		})
	}
}

func TestMapCaseEqualWidthReclassifies(t *testing.T) {
	got, err := MapCase(utf8Leaf("straße"), CaseUp, strsupport.CaseOptions{})
	if err != nil {
		t.Fatalf("MapCase: %v", err)
	}
	if got.String() != "STRASSE" || got.CodeRange() != coderange.SevenBit || got.Kind() != KindASCIIOnly {
		t.Errorf("got %q/%v/%v, want 7BIT STRASSE", got.String(), got.CodeRange(), got.Kind())
	}

	b := NewBuilder(encoding.UTF8, 8)
	b.Append([]byte("ß"), coderange.Valid)
	if _, err := strsupport.UpcaseComplex(encoding.UTF8, coderange.Valid, b, strsupport.CaseOptions{}); err != nil {
		t.Fatal(err)
	}
	if l := b.Build(); l.CodeRange() != coderange.SevenBit {
		t.Errorf("builder code range after equal-width mapping = %v, want 7BIT", l.CodeRange())
	}
}

func TestMapCaseUnchanged(t *testing.T) {
	for _, s := range []string{"ABC", "123 ÄÖ", ""} {
		in := utf8Leaf(s)
		got, err := Upcase(in, strsupport.CaseOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if got != in {
			t.Errorf("Upcase(%q) should return the receiver", s)
		}
	}

	m := utf8Leaf("abc").MakeMutable()
	got, err := Downcase(m, strsupport.CaseOptions{})
	if err != nil || got.String() != "abc" {
		t.Fatalf("Downcase(mutable) = %v, %v", got, err)
	}
	m.SetByte(0, 'x')
	if got.String() != "abc" {
		t.Error("result aliases the mutable leaf")
	}
}

func TestMapCaseBroken(t *testing.T) {
	if _, err := Swapcase(utf8Leaf("é\xff"), strsupport.CaseOptions{}); err == nil {
		t.Error("full case mapping of broken content should fail")
	}
}

func TestMapCaseOtherEncodings(t *testing.T) {
	got, err := Capitalize(FromString("a\x00B\x00", encoding.UTF16LE), strsupport.CaseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "A\x00b\x00" || got.Encoding() != encoding.UTF16LE {
		t.Errorf("Capitalize(UTF-16LE) = %q", got.String())
	}

	a := native.NewArena()
	defer a.Release()
	r, err := NewNative(a, []byte("caf\xe9"), encoding.ISO8859_1, -1, coderange.Unknown)
	if err != nil {
		t.Fatal(err)
	}
	got, err = Upcase(r, strsupport.CaseOptions{})
	if err != nil || got.String() != "CAF\xc9" {
		t.Errorf("Upcase(native latin1) = %q, %v", got, err)
	}
}

func TestMapCaseInPlace(t *testing.T) {
	m := utf8Leaf("straße").MakeMutable()
	modified, err := MapCaseInPlace(m, CaseUp, strsupport.CaseOptions{})
	if err != nil || !modified {
		t.Fatalf("MapCaseInPlace = %v, %v", modified, err)
	}
	if m.String() != "STRASSE" || m.CodeRange() != coderange.SevenBit || m.CharacterLength() != 7 {
		t.Errorf("after upcase: %q/%v/%d", m.String(), m.CodeRange(), m.CharacterLength())
	}

	modified, err = MapCaseInPlace(m, CaseUp, strsupport.CaseOptions{})
	if err != nil || modified {
		t.Errorf("second upcase = %v, %v", modified, err)
	}

	m.Freeze()
	mustPanic(t, "MapCaseInPlace on frozen leaf", func() {
		_, _ = MapCaseInPlace(m, CaseDown, strsupport.CaseOptions{})
	})
}

func TestParseCaseMode(t *testing.T) {
	for m := CaseUp; m <= CaseCapitalize; m++ {
		got, err := ParseCaseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseCaseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseCaseMode("titlecase"); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		self, src, repl string
		squeeze         bool
		want            string
	}{
		{"hello", "el", "ip", false, "hippo"},
		{"hello", "a-y", "b-z", false, "ifmmp"},
		{"hello", "^l", "*", false, "**ll*"},
		{"aabbcc", "a-c", "x", true, "x"},
		{"hello", "l", "é", false, "heééo"},
	}
	for _, tt := range tests {
		got, err := Translate(utf8Leaf(tt.self), utf8Leaf(tt.src), utf8Leaf(tt.repl), tt.squeeze)
		if err != nil {
			t.Fatalf("Translate(%q, %q, %q): %v", tt.self, tt.src, tt.repl, err)
		}
		if got.String() != tt.want {
			t.Errorf("Translate(%q, %q, %q) = %q, want %q", tt.self, tt.src, tt.repl, got.String(), tt.want)
		}
	}

	in := utf8Leaf("hello")
	if got, _ := Translate(in, utf8Leaf("xyz"), utf8Leaf("abc"), false); got != in {
		t.Error("no-op Translate should return the receiver")
	}
	if _, err := Translate(in, utf8Leaf("z-a"), utf8Leaf("x"), false); !errors.Is(err, strsupport.ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestCountDelete(t *testing.T) {
	r := utf8Leaf("hello world")
	if n, err := Count(r, utf8Leaf("lo")); err != nil || n != 5 {
		t.Errorf("Count(lo) = %d, %v", n, err)
	}
	if n, err := Count(r, utf8Leaf("a-z"), utf8Leaf("^l")); err != nil || n != 7 {
		t.Errorf("Count(a-z, ^l) = %d, %v", n, err)
	}
	if n, _ := Count(r); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}

	d, err := Delete(r, utf8Leaf("l"))
	if err != nil || d.String() != "heo word" {
		t.Errorf("Delete(l) = %q, %v", d, err)
	}
	if d, _ := Delete(r, utf8Leaf("z")); d != r {
		t.Error("Delete without match should return the receiver")
	}
	if d, _ := Delete(r); d != r {
		t.Error("Delete() should return the receiver")
	}
}

func TestSqueeze(t *testing.T) {
	tests := []struct {
		input string
		specs []string
		want  string
	}{
		{"aaabbbccc", nil, "abc"},
		{"aaabbbccc", []string{"a-b"}, "abccc"},
		{"ééééxxaa", nil, "éxa"},
		{"ééxx", []string{"é"}, "éxx"},
		{"mississippi", []string{"a-z", "^p"}, "misisippi"},
	}
	for _, tt := range tests {
		specs := make([]Rope, len(tt.specs))
		for i, s := range tt.specs {
			specs[i] = utf8Leaf(s)
		}
		got, err := Squeeze(utf8Leaf(tt.input), specs...)
		if err != nil {
			t.Fatalf("Squeeze(%q, %q): %v", tt.input, tt.specs, err)
		}
		if got.String() != tt.want {
			t.Errorf("Squeeze(%q, %q) = %q, want %q", tt.input, tt.specs, got.String(), tt.want)
		}
	}

	in := utf8Leaf("abc")
	if got, _ := Squeeze(in); got != in {
		t.Error("no-op Squeeze should return the receiver")
	}
}

func TestSucc(t *testing.T) {
	tests := []struct{ in, want string }{
		{"az", "ba"},
		{"zz", "aaa"},
		{"a9", "b0"},
		{"1.9.9", "2.0.0"},
		{"α", "β"},
	}
	for _, tt := range tests {
		got := Succ(utf8Leaf(tt.in))
		if got.String() != tt.want {
			t.Errorf("Succ(%q) = %q, want %q", tt.in, got.String(), tt.want)
		}
	}
}

func TestToInteger(t *testing.T) {
	got, err := ToInteger(utf8Leaf("  42  "), 10, true)
	if err != nil || got.Int64() != 42 {
		t.Errorf("ToInteger = %v, %v", got, err)
	}
	got, err = ToInteger(utf8Leaf("12abc"), 10, false)
	if err != nil || got.Int64() != 12 {
		t.Errorf("lenient ToInteger = %v, %v", got, err)
	}
	if _, err := ToInteger(utf8Leaf("12abc"), 10, true); !errors.Is(err, convert.ErrInvalidString) {
		t.Errorf("strict err = %v", err)
	}
	if _, err := ToInteger(FromString("1\x00", encoding.UTF16LE), 10, false); !errors.Is(err, ErrIncompatibleEncoding) {
		t.Errorf("UTF-16 err = %v", err)
	}
}

func TestCodePointAt(t *testing.T) {
	r := utf8Leaf("aé")
	if c, err := CodePointAt(r, 1); err != nil || c != 0xe9 {
		t.Errorf("CodePointAt(1) = %#x, %v", c, err)
	}
	if _, err := CodePointAt(utf8Leaf("a\xff"), 1); !errors.Is(err, strsupport.ErrInvalidByteSequence) {
		t.Errorf("err = %v", err)
	}
}

func TestCaseCompare(t *testing.T) {
	tests := []struct {
		a, b   Rope
		want   int
		wantOK bool
	}{
		{utf8Leaf("hello"), utf8Leaf("HELLO"), 0, true},
		{utf8Leaf("abc"), utf8Leaf("ABD"), -1, true},
		{utf8Leaf("abc"), FromString("AB", encoding.ASCII8BIT), 1, true},
		{utf8Leaf("é"), FromString("\xe9", encoding.ISO8859_1), 0, false},
		{utf8Leaf("a"), FromString("a\x00", encoding.UTF16LE), 0, false},
	}
	for _, tt := range tests {
		got, ok := CaseCompare(tt.a, tt.b)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CaseCompare(%q, %q) = %d, %v; want %d, %v", String(tt.a), String(tt.b), got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGraphemesAndWidth(t *testing.T) {
	if n := GraphemeLength(utf8Leaf("🇯🇵a")); n != 2 {
		t.Errorf("GraphemeLength = %d, want 2", n)
	}
	if n := DisplayWidth(utf8Leaf("日本a")); n != 5 {
		t.Errorf("DisplayWidth = %d, want 5", n)
	}
	if n := DisplayWidth(FromString("ab", encoding.ASCII8BIT)); n != 2 {
		t.Errorf("DisplayWidth(binary) = %d", n)
	}
	if n := GraphemeLength(utf8Leaf("a\xff")); n != 2 {
		t.Errorf("GraphemeLength(broken) = %d", n)
	}
}
