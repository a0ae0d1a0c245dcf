package rope

import (
	"errors"
	"testing"

	"github.com/dshills/ropecore/internal/byteview"
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/native"
)

func newTestNative(t *testing.T, s string, enc encoding.Encoding) (*native.Arena, *NativeRope) {
	t.Helper()
	a := native.NewArena()
	t.Cleanup(func() {
		if !a.Released() {
			a.Release()
		}
	})
	r, err := NewNative(a, []byte(s), enc, -1, coderange.Unknown)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	return a, r
}

func TestNewNative(t *testing.T) {
	_, r := newTestNative(t, "héllo", encoding.UTF8)

	if r.ByteLength() != 6 || r.Capacity() != 6 {
		t.Errorf("ByteLength/Capacity = %d/%d", r.ByteLength(), r.Capacity())
	}
	if r.Get(6) != 0 {
		t.Error("missing terminator")
	}
	if r.CodeRange() != coderange.Valid || r.CharacterLength() != 5 {
		t.Errorf("attributes = %v/%d", r.CodeRange(), r.CharacterLength())
	}
	if r.IsReadOnly() {
		t.Error("native rope should be writable")
	}
	if r.String() != "héllo" || r.Bytes().String() != "héllo" {
		t.Errorf("content = %q", r.String())
	}
	if r.Hash() != byteview.FromString("héllo").Hash() {
		t.Error("Hash should match content hash")
	}
}

func TestNativeBytesAreCopies(t *testing.T) {
	_, r := newTestNative(t, "abc", encoding.UTF8)
	v := r.Bytes()
	r.Set(0, 'x')
	if v.String() != "abc" {
		t.Errorf("earlier copy changed to %q", v.String())
	}
	if r.BytesRange(0, 2).String() != "xb" {
		t.Errorf("BytesRange = %q", r.BytesRange(0, 2).String())
	}

	dst := byteview.Make(3)
	r.CopyTo(1, dst, 1, 2)
	if dst.String() != "\x00bc" {
		t.Errorf("CopyTo = %q", dst.String())
	}
}

func TestNativeExternalWrites(t *testing.T) {
	_, r := newTestNative(t, "abc", encoding.UTF8)
	if r.CodeRange() != coderange.SevenBit {
		t.Fatalf("CodeRange() = %v", r.CodeRange())
	}

	r.Memory()[1] = 0xff
	if r.String() != "a\xffc" {
		t.Errorf("live read = %q", r.String())
	}
	if r.CodeRange() != coderange.SevenBit {
		t.Error("cached attributes should be trusted until cleared")
	}
	r.ClearCodeRange()
	if r.CodeRange() != coderange.Broken {
		t.Errorf("rescanned CodeRange() = %v, want BROKEN", r.CodeRange())
	}
}

func TestNativeSet(t *testing.T) {
	_, r := newTestNative(t, "abc", encoding.UTF8)
	_ = r.CodeRange()

	r.Set(0, 'z')
	if cr, n := r.attrs.Load(); cr != coderange.SevenBit || n != 3 {
		t.Errorf("ASCII Set on 7BIT cleared the cache: %v/%d", cr, n)
	}

	r.Set(0, 0xc3)
	if cr, _ := r.attrs.Load(); cr.IsKnown() {
		t.Errorf("non-ASCII Set kept %v", cr)
	}
	if r.CodeRange() != coderange.Broken {
		t.Errorf("CodeRange() = %v, want BROKEN", r.CodeRange())
	}

	r.Set(1, 0xa9)
	if r.CodeRange() != coderange.Valid || r.CharacterLength() != 2 {
		t.Errorf("after completing é: %v/%d", r.CodeRange(), r.CharacterLength())
	}
}

func TestNativeWithByteLength(t *testing.T) {
	_, r := newTestNative(t, "hello", encoding.UTF8)

	short := r.WithByteLength(3, 3, coderange.SevenBit)
	if short.String() != "hel" || short.CharacterLength() != 3 {
		t.Errorf("short = %q/%d", short.String(), short.CharacterLength())
	}
	if short.Get(3) != 0 {
		t.Error("terminator not written at the new length")
	}
	if short.Capacity() != 5 {
		t.Errorf("Capacity() = %d, want 5", short.Capacity())
	}
	// The old view sees the terminator in the shared block.
	if r.Get(3) != 0 {
		t.Error("old view should observe the shared block")
	}

	full := short.WithByteLength(5, -1, coderange.Unknown)
	if full.String() != "hel\x00o" || full.CodeRange() != coderange.SevenBit {
		t.Errorf("regrown = %q/%v", full.String(), full.CodeRange())
	}

	v := mustPanic(t, "WithByteLength beyond capacity", func() {
		r.WithByteLength(6, -1, coderange.Unknown)
	})
	if err, ok := v.(error); !ok || !errors.Is(err, ErrCapacity) {
		t.Errorf("panic value = %v, want ErrCapacity", v)
	}
}

func TestNewNativeBuffer(t *testing.T) {
	a := native.NewArena()
	defer a.Release()

	r, err := NewNativeBuffer(a, 8, 4)
	if err != nil {
		t.Fatal(err)
	}
	if r.Encoding() != encoding.ASCII8BIT || r.ByteLength() != 4 || r.Capacity() != 8 {
		t.Errorf("buffer = %s/%d/%d", r.Encoding().Name(), r.ByteLength(), r.Capacity())
	}
	if r.CodeRange() != coderange.SevenBit {
		t.Errorf("zeroed buffer CodeRange() = %v", r.CodeRange())
	}
	mustPanic(t, "NewNativeBuffer(4, 8)", func() { _, _ = NewNativeBuffer(a, 4, 8) })
}

func TestNativeResize(t *testing.T) {
	a, r := newTestNative(t, "hello", encoding.UTF8)

	grown, err := r.Resize(8)
	if err != nil {
		t.Fatal(err)
	}
	if grown.String() != "hello\x00\x00\x00" || grown.Get(8) != 0 {
		t.Errorf("Resize(8) = %q", grown.String())
	}
	if v := mustPanic(t, "read after Resize", func() { _ = r.String() }); v != native.ErrReleased {
		t.Errorf("panic value = %v, want native.ErrReleased", v)
	}

	shrunk, err := grown.Resize(2)
	if err != nil {
		t.Fatal(err)
	}
	if shrunk.String() != "he" || shrunk.Capacity() != 2 {
		t.Errorf("Resize(2) = %q/%d", shrunk.String(), shrunk.Capacity())
	}

	wide, err := shrunk.ExpandCapacity(64)
	if err != nil {
		t.Fatal(err)
	}
	if wide.String() != "he" || wide.Capacity() != 64 || wide.Get(2) != 0 {
		t.Errorf("ExpandCapacity = %q/%d", wide.String(), wide.Capacity())
	}
	if a.Len() != 1 {
		t.Errorf("arena holds %d blocks, want 1", a.Len())
	}
}

func TestNativeMakeCopy(t *testing.T) {
	_, r := newTestNative(t, "héllo", encoding.UTF8)
	_ = r.CharacterLength()

	c, err := r.MakeCopy()
	if err != nil {
		t.Fatal(err)
	}
	c.Set(0, 'j')
	if r.String() != "héllo" || c.String() != "jéllo" {
		t.Errorf("copy shares storage: %q / %q", r.String(), c.String())
	}
	if c.Arena() != r.Arena() {
		t.Error("copy should live in the same arena")
	}

	l := c.ToLeaf()
	if l.String() != "jéllo" || l.Kind() != KindValid {
		t.Errorf("ToLeaf = %q/%v", l.String(), l.Kind())
	}
}

func TestNativeWithEncoding(t *testing.T) {
	_, r := newTestNative(t, "ab", encoding.UTF8)
	w := r.WithEncoding(encoding.UTF16LE)
	if w.CharacterLength() != 1 || w.CodeRange() != coderange.Valid {
		t.Errorf("UTF-16LE view = %d/%v", w.CharacterLength(), w.CodeRange())
	}
	if r.CharacterLength() != 2 {
		t.Error("original view changed")
	}
}

func TestNativeArenaRelease(t *testing.T) {
	a, r := newTestNative(t, "abc", encoding.UTF8)
	a.Release()
	if v := mustPanic(t, "read after release", func() { r.Get(0) }); v != native.ErrReleased {
		t.Errorf("panic value = %v", v)
	}
}

func TestNewNativeLimit(t *testing.T) {
	a := native.NewArena(native.WithLimit(4))
	defer a.Release()
	_, err := NewNative(a, []byte("hello"), encoding.UTF8, 5, coderange.SevenBit)
	if !errors.Is(err, native.ErrOutOfMemory) {
		t.Errorf("err = %v, want ErrOutOfMemory", err)
	}
}
