package byteview

import (
	"bytes"
	"unsafe"
)

// View is a window [off, off+n) over buf.
// The zero View is empty and valid.
type View struct {
	buf []byte
	off int
	n   int
}

// Empty is the zero-length view.
var Empty = View{}

// New wraps b without copying it.
func New(b []byte) View {
	return View{buf: b, n: len(b)}
}

// FromString copies s into a fresh buffer.
func FromString(s string) View {
	return New([]byte(s))
}

// Make allocates a zeroed view of length n.
func Make(n int) View {
	return New(make([]byte, n))
}

// Of returns a view over a fresh buffer holding bs.
func Of(bs ...byte) View {
	return New(append([]byte(nil), bs...))
}

// FromRange wraps b[start:end] without copying.
func FromRange(b []byte, start, end int) View {
	checkRange("from range", start, end, len(b))
	return View{buf: b, off: start, n: end - start}
}

// FromRangeClamped is FromRange with end clamped to len(b).
func FromRangeClamped(b []byte, start, end int) View {
	return FromRange(b, start, min(len(b), end))
}

// Len returns the number of bytes in the view.
func (v View) Len() int { return v.n }

// IsEmpty reports whether the view has no bytes.
func (v View) IsEmpty() bool { return v.n == 0 }

// Offset returns the offset of the view into its backing buffer.
func (v View) Offset() int { return v.off }

// End returns Offset()+Len().
func (v View) End() int { return v.off + v.n }

// Raw returns the viewed bytes without copying. Writes through the
// returned slice are visible to every view sharing the storage.
// The capacity is clipped so appends never clobber bytes past the view.
func (v View) Raw() []byte {
	if v.buf == nil {
		return nil
	}
	return v.buf[v.off : v.off+v.n : v.off+v.n]
}

// Bytes returns a private copy of the viewed bytes.
func (v View) Bytes() []byte {
	out := make([]byte, v.n)
	copy(out, v.Raw())
	return out
}

// String returns the viewed bytes as a string (copying).
func (v View) String() string {
	return string(v.Raw())
}

// UnsafeString returns the viewed bytes as a string without copying.
// The caller must guarantee the bytes are never mutated afterwards.
func (v View) UnsafeString() string {
	if v.n == 0 {
		return ""
	}
	return unsafe.String(&v.buf[v.off], v.n)
}

// Slice returns the sub-view [off, off+n). It never copies.
func (v View) Slice(off, n int) View {
	checkRange("slice", off, off+n, v.n)
	return View{buf: v.buf, off: v.off + off, n: n}
}

// SliceRange returns the sub-view [start, end). It never copies.
func (v View) SliceRange(start, end int) View {
	checkRange("slice range", start, end, v.n)
	return View{buf: v.buf, off: v.off + start, n: end - start}
}

// ClampedSlice is Slice with n truncated to stay within the view.
func (v View) ClampedSlice(off, n int) View {
	return v.Slice(off, min(n, v.n-off))
}

// ClampedRange is SliceRange with end truncated to stay within the view.
func (v View) ClampedRange(start, end int) View {
	return v.SliceRange(start, min(end, v.n))
}

// CheckedSlice is Slice returning an error instead of panicking.
func (v View) CheckedSlice(off, n int) (View, error) {
	if err := rangeError("slice", off, off+n, v.n); err != nil {
		return View{}, err
	}
	return View{buf: v.buf, off: v.off + off, n: n}, nil
}

// Get returns the byte at i.
func (v View) Get(i int) byte {
	checkIndex("get", i, v.n)
	return v.buf[v.off+i]
}

// CheckedGet is Get returning an error instead of panicking.
func (v View) CheckedGet(i int) (byte, error) {
	if i < 0 || i >= v.n {
		return 0, &OutOfBoundsError{Op: "get", Start: i, End: i + 1, Length: v.n}
	}
	return v.buf[v.off+i], nil
}

// Set overwrites the byte at i in the shared storage.
func (v View) Set(i int, b byte) {
	checkIndex("set", i, v.n)
	v.buf[v.off+i] = b
}

// Fill sets every byte of the view to b.
func (v View) Fill(b byte) {
	v.FillRange(0, v.n, b)
}

// FillRange sets the bytes in [begin, end) to b.
func (v View) FillRange(begin, end int, b byte) {
	checkRange("fill", begin, end, v.n)
	s := v.buf[v.off+begin : v.off+end]
	for i := range s {
		s[i] = b
	}
}

// Copy copies n bytes from src[srcPos:] to dst[dstPos:]. Source and
// destination may share storage; the copy behaves like memmove.
func Copy(src View, srcPos int, dst View, dstPos int, n int) {
	checkRange("copy source", srcPos, srcPos+n, src.n)
	checkRange("copy destination", dstPos, dstPos+n, dst.n)
	copy(dst.buf[dst.off+dstPos:dst.off+dstPos+n], src.buf[src.off+srcPos:src.off+srcPos+n])
}

// Memchr returns the index (relative to v) of the first b in [start,
// start+n), or -1.
func (v View) Memchr(start, n int, b byte) int {
	checkRange("memchr", start, start+n, v.n)
	i := bytes.IndexByte(v.buf[v.off+start:v.off+start+n], b)
	if i < 0 {
		return -1
	}
	return start + i
}

// Memcmp compares n bytes of a starting at i with n bytes of b starting
// at j as unsigned values. It returns <0, 0 or >0.
func Memcmp(a View, i int, b View, j int, n int) int {
	checkRange("memcmp", i, i+n, a.n)
	checkRange("memcmp", j, j+n, b.n)
	return bytes.Compare(a.buf[a.off+i:a.off+i+n], b.buf[b.off+j:b.off+j+n])
}

// Equal reports whether a and b hold the same bytes.
func Equal(a, b View) bool {
	return bytes.Equal(a.Raw(), b.Raw())
}

// Equal reports whether v and o hold the same bytes.
func (v View) Equal(o View) bool {
	return Equal(v, o)
}

// SameStorage reports whether v and o share a backing buffer.
func (v View) SameStorage(o View) bool {
	if cap(v.buf) == 0 || cap(o.buf) == 0 {
		return false
	}
	return &v.buf[:1][0] == &o.buf[:1][0]
}

// ReferenceAndRangeEqual reports whether v and o are the same window
// over the same buffer.
func (v View) ReferenceAndRangeEqual(o View) bool {
	return v.off == o.off && v.n == o.n && (v.n == 0 || v.SameStorage(o))
}

// Hash returns a content hash consistent with Equal. It uses the 31
// multiplier polynomial over signed bytes, so equal contents hash equally
// regardless of offset.
func (v View) Hash() int32 {
	h := int32(1)
	for _, b := range v.Raw() {
		h = 31*h + int32(int8(b))
	}
	return h
}

// Clone returns a view over a private copy of v.
func (v View) Clone() View {
	return New(v.Bytes())
}

// CopyOf returns a private copy of v resized to newLen, zero-padded or
// truncated.
func CopyOf(v View, newLen int) View {
	out := make([]byte, newLen)
	copy(out, v.Raw())
	return New(out)
}

// ExtractRange returns a private copy of v[start:end].
func ExtractRange(v View, start, end int) View {
	return v.SliceRange(start, end).Clone()
}
