// Package byteview provides View, a cheap non-owning window over a byte buffer.
//
// A View is a (buffer, offset, length) triple. Slicing a View never copies:
// the result shares the same backing storage. Only Clone, CopyOf,
// ExtractRange and Bytes produce private copies.
//
// Index violations are programming errors and panic with *OutOfBoundsError.
// The Checked* accessors return the same error instead, for use at API
// boundaries where indices come from untrusted callers.
//
// Basic usage:
//
//	v := byteview.FromString("hello world")
//	w := v.Slice(6, 5)        // "world", shares storage with v
//	w.Set(0, 'W')             // v now reads "hello World"
//	c := w.Clone()            // private copy
package byteview
