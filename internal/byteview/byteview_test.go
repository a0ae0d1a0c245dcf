package byteview

import (
	"errors"
	"testing"
)

func TestSliceSharesStorage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		off  int
		n    int
	}{
		{"prefix", "hello world", 0, 5},
		{"suffix", "hello world", 6, 5},
		{"middle", "hello world", 3, 4},
		{"empty at end", "hello", 5, 0},
		{"whole", "abc", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FromString(tt.in)
			s := v.Slice(tt.off, tt.n)
			if got, want := s.String(), tt.in[tt.off:tt.off+tt.n]; got != want {
				t.Errorf("Slice(%d, %d) = %q, want %q", tt.off, tt.n, got, want)
			}
			if tt.n > 0 && !s.SameStorage(v) {
				t.Error("slice does not share storage with its parent")
			}
			if got := string(s.Bytes()); got != string(v.Bytes()[tt.off:tt.off+tt.n]) {
				t.Errorf("Bytes() = %q", got)
			}
		})
	}
}

func TestSliceWriteThrough(t *testing.T) {
	v := FromString("hello world")
	w := v.Slice(6, 5)
	w.Set(0, 'W')

	if got := v.String(); got != "hello World" {
		t.Errorf("parent = %q, want %q", got, "hello World")
	}

	c := w.Clone()
	c.Set(0, 'x')
	if got := v.String(); got != "hello World" {
		t.Errorf("clone write leaked into parent: %q", got)
	}
	if c.SameStorage(v) {
		t.Error("clone shares storage")
	}
}

func TestSliceRange(t *testing.T) {
	v := FromString("abcdef")
	if got := v.SliceRange(2, 4).String(); got != "cd" {
		t.Errorf("SliceRange(2, 4) = %q", got)
	}
	if got := v.SliceRange(1, 5).SliceRange(1, 3).String(); got != "cd" {
		t.Errorf("nested SliceRange = %q", got)
	}
}

func TestClamped(t *testing.T) {
	v := FromString("abcdef")
	if got := v.ClampedSlice(4, 100).String(); got != "ef" {
		t.Errorf("ClampedSlice = %q", got)
	}
	if got := v.ClampedRange(1, 100).String(); got != "bcdef" {
		t.Errorf("ClampedRange = %q", got)
	}
	if got := FromRangeClamped([]byte("xyz"), 1, 10).String(); got != "yz" {
		t.Errorf("FromRangeClamped = %q", got)
	}
}

func TestOutOfBoundsPanics(t *testing.T) {
	v := FromString("abc")

	tests := []struct {
		name string
		fn   func()
	}{
		{"get negative", func() { v.Get(-1) }},
		{"get past end", func() { v.Get(3) }},
		{"set past end", func() { v.Set(3, 'x') }},
		{"slice past end", func() { v.Slice(2, 2) }},
		{"slice range inverted", func() { v.SliceRange(2, 1) }},
		{"fill past end", func() { v.FillRange(0, 4, 'x') }},
		{"copy past end", func() { Copy(v, 0, v, 2, 2) }},
		{"memchr past end", func() { v.Memchr(1, 3, 'a') }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrOutOfBounds) {
					t.Errorf("panic value = %v, want ErrOutOfBounds", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestCheckedAccessors(t *testing.T) {
	v := FromString("abc")

	if _, err := v.CheckedGet(5); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("CheckedGet(5) error = %v", err)
	}
	if b, err := v.CheckedGet(1); err != nil || b != 'b' {
		t.Errorf("CheckedGet(1) = %q, %v", b, err)
	}

	var oob *OutOfBoundsError
	if _, err := v.CheckedSlice(1, 5); !errors.As(err, &oob) {
		t.Fatalf("CheckedSlice error = %v", err)
	}
	if oob.Length != 3 || oob.Start != 1 || oob.End != 6 {
		t.Errorf("unexpected error fields: %+v", oob)
	}
}

func TestCopyOverlapping(t *testing.T) {
	v := FromString("abcdef")
	Copy(v, 0, v, 2, 4)
	if got := v.String(); got != "ababcd" {
		t.Errorf("overlapping copy = %q, want %q", got, "ababcd")
	}
}

func TestFill(t *testing.T) {
	v := FromString("abcdef")
	v.FillRange(1, 3, 'x')
	if got := v.String(); got != "axxdef" {
		t.Errorf("FillRange = %q", got)
	}
	v.Slice(4, 2).Fill('-')
	if got := v.String(); got != "axxd--" {
		t.Errorf("Fill = %q", got)
	}
}

func TestMemchr(t *testing.T) {
	v := FromString("xxhello")
	s := v.Slice(2, 5)

	tests := []struct {
		start, n int
		b        byte
		want     int
	}{
		{0, 5, 'l', 2},
		{3, 2, 'l', 3},
		{0, 5, 'x', -1},
		{0, 0, 'h', -1},
	}
	for _, tt := range tests {
		if got := s.Memchr(tt.start, tt.n, tt.b); got != tt.want {
			t.Errorf("Memchr(%d, %d, %q) = %d, want %d", tt.start, tt.n, tt.b, got, tt.want)
		}
	}
}

func TestMemcmp(t *testing.T) {
	a := FromString("abc\xff")
	b := FromString("zabd\x01")

	if got := Memcmp(a, 0, b, 1, 2); got != 0 {
		t.Errorf("equal prefix compare = %d", got)
	}
	if got := Memcmp(a, 0, b, 1, 3); got >= 0 {
		t.Errorf("abc vs abd = %d, want < 0", got)
	}
	if got := Memcmp(a, 3, b, 4, 1); got <= 0 {
		t.Errorf("0xff vs 0x01 = %d, want > 0 (unsigned)", got)
	}
}

func TestEqualAndHash(t *testing.T) {
	a := FromString("--hello--").Slice(2, 5)
	b := FromString("hello")
	c := FromString("hellp")

	if !a.Equal(b) {
		t.Error("equal contents compare unequal")
	}
	if a.Hash() != b.Hash() {
		t.Errorf("hash mismatch for equal contents: %d vs %d", a.Hash(), b.Hash())
	}
	if a.Equal(c) {
		t.Error("different contents compare equal")
	}
	if Empty.Hash() != 1 {
		t.Errorf("empty hash = %d, want 1", Empty.Hash())
	}
}

func TestCopyOfAndExtract(t *testing.T) {
	v := FromString("hello")

	grown := CopyOf(v, 7)
	if grown.Len() != 7 || grown.Get(6) != 0 || grown.SliceRange(0, 5).String() != "hello" {
		t.Errorf("CopyOf grow = %q", grown.Raw())
	}
	if got := CopyOf(v, 2).String(); got != "he" {
		t.Errorf("CopyOf shrink = %q", got)
	}

	e := ExtractRange(v, 1, 4)
	if e.String() != "ell" || e.SameStorage(v) {
		t.Errorf("ExtractRange = %q (shared=%v)", e.String(), e.SameStorage(v))
	}
}

func TestReferenceAndRangeEqual(t *testing.T) {
	v := FromString("hello")
	if !v.Slice(1, 2).ReferenceAndRangeEqual(v.SliceRange(1, 3)) {
		t.Error("same window reported different")
	}
	other := New(append([]byte(nil), "hello"...))
	if v.Slice(1, 2).ReferenceAndRangeEqual(other.Slice(1, 2)) {
		t.Error("different buffers reported same")
	}
}

func TestRawClipsCapacity(t *testing.T) {
	v := FromString("abcdef")
	r := v.Slice(0, 2).Raw()
	r = append(r, 'X')
	_ = r
	if got := v.String(); got != "abcdef" {
		t.Errorf("append through Raw clobbered parent: %q", got)
	}
}
