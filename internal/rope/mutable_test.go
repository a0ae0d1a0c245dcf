package rope

import (
	"testing"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
)

func TestMutableLazyAttributes(t *testing.T) {
	m := NewMutable([]byte("héllo"), encoding.UTF8, coderange.Unknown, -1)
	if m.CodeRange() != coderange.Valid {
		t.Errorf("CodeRange() = %v", m.CodeRange())
	}
	if m.CharacterLength() != 5 {
		t.Errorf("CharacterLength() = %d", m.CharacterLength())
	}

	m = NewMutable([]byte("héllo"), encoding.UTF8, coderange.Valid, -1)
	if m.CharacterLength() != 5 {
		t.Errorf("CharacterLength() with known code range = %d", m.CharacterLength())
	}
}

func TestReplaceRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		off   int
		src   string
		srcCR coderange.CodeRange
		want  string
		cr    coderange.CodeRange
	}{
		{"ascii into ascii", "hello", 0, "J", coderange.SevenBit, "Jello", coderange.SevenBit},
		{"valid into ascii", "hello", 0, "é", coderange.Valid, "éllo", coderange.Valid},
		{"broken into valid", "héllo", 4, "\xff", coderange.Broken, "hél\xffo", coderange.Broken},
		{"unknown source", "hello", 1, "\xe2\x82\xac", coderange.Unknown, "h€o", coderange.Valid},
		{"ascii into valid", "héllo", 0, "H", coderange.SevenBit, "Héllo", coderange.Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromString(tt.input, encoding.UTF8).MakeMutable()
			m.ReplaceRange(tt.off, []byte(tt.src), tt.srcCR)
			if m.String() != tt.want {
				t.Errorf("content = %q, want %q", m.String(), tt.want)
			}
			if m.CodeRange() != tt.cr {
				t.Errorf("CodeRange() = %v, want %v", m.CodeRange(), tt.cr)
			}
		})
	}
}

func TestReplaceRangeNeverNarrows(t *testing.T) {
	// Overwriting the only non-ASCII character keeps the wider range
	// until the content is reclassified.
	m := FromString("é", encoding.UTF8).MakeMutable()
	m.ReplaceRange(0, []byte("ab"), coderange.SevenBit)
	if m.CodeRange() != coderange.Valid {
		t.Errorf("CodeRange() = %v, want VALID", m.CodeRange())
	}
	m.ClearCodeRange()
	if m.CodeRange() != coderange.SevenBit {
		t.Errorf("after ClearCodeRange = %v, want 7BIT", m.CodeRange())
	}

	mustPanic(t, "ReplaceRange out of bounds", func() {
		m.ReplaceRange(1, []byte("xyz"), coderange.SevenBit)
	})
}

func TestSetByteKeepsCache(t *testing.T) {
	m := FromString("abc", encoding.UTF8).MakeMutable()
	m.SetByte(1, 0xff)
	if m.CodeRange() != coderange.SevenBit {
		t.Errorf("cached CodeRange() = %v, want stale 7BIT", m.CodeRange())
	}
	m.ClearCodeRange()
	if m.CodeRange() != coderange.Broken {
		t.Errorf("CodeRange() = %v, want BROKEN", m.CodeRange())
	}
}

func TestMutableAppend(t *testing.T) {
	m := FromString("ab", encoding.UTF8).MakeMutable()
	m.Append([]byte("日本"), coderange.Valid)
	if m.String() != "ab日本" || m.CodeRange() != coderange.Valid || m.CharacterLength() != 4 {
		t.Errorf("after append: %q/%v/%d", m.String(), m.CodeRange(), m.CharacterLength())
	}

	// Two broken halves make a valid character.
	m = NewMutable([]byte("\xe3\x81"), encoding.UTF8, coderange.Unknown, -1)
	if m.CodeRange() != coderange.Broken {
		t.Fatalf("prefix CodeRange() = %v", m.CodeRange())
	}
	m.Append([]byte{0x82}, coderange.Unknown)
	if m.CodeRange() != coderange.Valid || m.CharacterLength() != 1 {
		t.Errorf("joined = %v/%d, want VALID/1", m.CodeRange(), m.CharacterLength())
	}

	m.Append(nil, coderange.Broken)
	if m.CodeRange() != coderange.Valid {
		t.Error("empty append changed the code range")
	}
}

func TestFreeze(t *testing.T) {
	m := FromString("abc", encoding.UTF8).MakeMutable()
	m.SetByte(0, 0xe9)

	l := m.Freeze()
	if l.Kind() != KindInvalid {
		t.Errorf("frozen Kind() = %v, want invalid", l.Kind())
	}
	if m.Freeze() != l || m.MakeReadOnly() != l {
		t.Error("Freeze should be idempotent")
	}
	if !m.IsReadOnly() {
		t.Error("frozen leaf should be read-only")
	}
	if m.String() != "\xe9bc" || m.ByteAt(1) != 'b' {
		t.Error("reads should work after Freeze")
	}

	mutators := map[string]func(){
		"SetByte":      func() { m.SetByte(0, 'x') },
		"ReplaceRange": func() { m.ReplaceRange(0, []byte("x"), coderange.SevenBit) },
		"Append":       func() { m.Append([]byte("x"), coderange.SevenBit) },
		"Grow":         func() { m.Grow(10) },
		"Buffer":       func() { m.Buffer() },
	}
	for name, fn := range mutators {
		if v := mustPanic(t, name, fn); v != ErrFrozen {
			t.Errorf("%s panicked with %v, want ErrFrozen", name, v)
		}
	}

	c := m.MakeMutable()
	if c == m || c.IsReadOnly() {
		t.Fatal("MakeMutable on a frozen leaf should copy")
	}
	c.SetByte(0, 'a')
	if l.String() != "\xe9bc" {
		t.Errorf("frozen leaf changed to %q", l.String())
	}
}

func TestMutableCloneAs(t *testing.T) {
	m := FromString("héllo", encoding.UTF8).MakeMutable()
	if m.MakeMutable() != m {
		t.Error("MakeMutable on a live leaf should return itself")
	}

	c := m.CloneAs(false).(*MutableLeaf)
	c.SetByte(0, 'j')
	if m.String() != "héllo" {
		t.Error("clone shares storage")
	}
	if c.CodeRange() != coderange.Valid {
		t.Errorf("clone CodeRange() = %v", c.CodeRange())
	}
	if l := m.CloneAs(true).(*Leaf); l.Kind() != KindValid {
		t.Errorf("read-only clone Kind() = %v", l.Kind())
	}
}

func TestMutableBuffer(t *testing.T) {
	m := FromString("hello", encoding.UTF8).MakeMutable()
	buf := m.Buffer()
	buf.Replace(0, 1, []byte("é"))
	if m.String() != "éello" || m.CodeRange() != coderange.Valid {
		t.Errorf("after Replace: %q/%v", m.String(), m.CodeRange())
	}
	buf.SetLength(2)
	if m.String() != "é" || m.CharacterLength() != 1 {
		t.Errorf("after SetLength: %q/%d", m.String(), m.CharacterLength())
	}
}

func TestMutableBufferAfterFreeze(t *testing.T) {
	m := FromString("hello", encoding.UTF8).MakeMutable()
	buf := m.Buffer()
	l := m.Freeze()

	mustPanic(t, "Bytes after Freeze", func() { _ = buf.Bytes() })
	mustPanic(t, "Replace after Freeze", func() { buf.Replace(0, 1, []byte("J")) })
	if l.String() != "hello" {
		t.Errorf("frozen leaf changed to %q", l.String())
	}
}
