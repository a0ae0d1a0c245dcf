// Package rope provides encoded byte strings with cached classification.
//
// A Rope is a byte sequence tagged with an encoding and a code range. Three
// concrete types implement it:
//
//   - Leaf is immutable and freely shareable. Its code range is fixed at
//     construction by its Kind.
//   - MutableLeaf has a single owner and supports in-place edits until it
//     is frozen into a Leaf.
//   - NativeRope lives in off-heap memory owned by a native.Arena and may
//     be written by code outside this package.
//
// The Guard detects a mutable rope attached to more than one owner.
//
// Basic usage:
//
//	l := rope.FromString("héllo", encoding.UTF8)
//	m := l.MakeMutable()
//	m.ReplaceRange(0, []byte("H"), coderange.SevenBit)
//	frozen := m.Freeze()   // "Héllo"
//	up, _ := rope.Upcase(frozen, strsupport.CaseOptions{})
package rope
