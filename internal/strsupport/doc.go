// Package strsupport implements the encoding-aware scanning and
// transformation algorithms behind ropes.
//
// Every function takes the Encoding of its input and, where it helps, the
// input's code range: 7BIT and VALID content skips validation, BROKEN and
// UNKNOWN content is measured precisely.
//
// The package covers:
//   - character lengths in three flavours (trusted, recovering, precise)
//   - code range classification
//   - code point decoding and encoding
//   - case mapping, with an ASCII fast path and a full Unicode path
//   - tr, tr_s, delete, squeeze and count over character set specs
//   - successor strings
//
// Malformed input never stalls iteration: the recovering length treats a
// bad byte as a one-unit pseudo-character.
package strsupport
