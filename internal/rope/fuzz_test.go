package rope

import (
	"bytes"
	"testing"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/strsupport"
)

// FuzzLeaf tests leaf creation and character iteration from arbitrary
// bytes.
func FuzzLeaf(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("hello"))
	f.Add([]byte("日本語"))
	f.Add([]byte("a\xffb\xe3\x81"))
	f.Add([]byte("emoji 🎉 test"))

	f.Fuzz(func(t *testing.T, b []byte) {
		l := FromBytes(b, encoding.UTF8)
		if !bytes.Equal(l.Bytes().Raw(), b) {
			t.Fatal("content mismatch")
		}

		n, total := 0, 0
		for _, ch := range All(l) {
			n++
			total += len(ch)
		}
		if n != l.CharacterLength() {
			t.Errorf("iterated %d characters, CharacterLength() = %d", n, l.CharacterLength())
		}
		if total != len(b) {
			t.Errorf("iterated %d bytes of %d", total, len(b))
		}
	})
}

// FuzzMutableAppend tests that incremental attributes agree with a fresh
// classification.
func FuzzMutableAppend(f *testing.F) {
	f.Add([]byte("abc"), []byte("déf"))
	f.Add([]byte("\xe3"), []byte("\x81\x82"))
	f.Add([]byte(""), []byte("\xff"))

	f.Fuzz(func(t *testing.T, a, b []byte) {
		m := NewMutable(bytes.Clone(a), encoding.UTF8, coderange.Unknown, -1)
		_ = m.CharacterLength()
		m.Append(b, coderange.Unknown)

		want := strsupport.ClassifyBytes(encoding.UTF8, append(bytes.Clone(a), b...))
		if m.CodeRange() != want.CodeRange || m.CharacterLength() != want.CharacterLength {
			t.Errorf("Append(%q, %q) = %v/%d, want %v/%d",
				a, b, m.CodeRange(), m.CharacterLength(), want.CodeRange, want.CharacterLength)
		}
	})
}

// FuzzUpcase tests that case mapping never corrupts valid input.
func FuzzUpcase(f *testing.F) {
	f.Add("hello")
	f.Add("straße")
	f.Add("éCOLE")

	f.Fuzz(func(t *testing.T, s string) {
		l := utf8Leaf(s)
		if l.Kind() == KindInvalid {
			return
		}
		got, err := Upcase(l, strsupport.CaseOptions{})
		if err != nil {
			t.Fatalf("Upcase(%q): %v", s, err)
		}
		if got.Kind() == KindInvalid {
			t.Errorf("Upcase(%q) produced broken content %q", s, got.String())
		}
		if l.String() != s {
			t.Error("input modified")
		}
	})
}
