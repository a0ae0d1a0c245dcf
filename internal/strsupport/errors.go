package strsupport

import (
	"errors"
	"fmt"

	"github.com/dshills/ropecore/internal/encoding"
)

// Errors returned by scanning operations.
var (
	// ErrEmptyString indicates a code point was requested from an empty range.
	ErrEmptyString = errors.New("empty string")

	// ErrInvalidByteSequence is matched by every *InvalidByteSequenceError.
	ErrInvalidByteSequence = errors.New("invalid byte sequence")

	// ErrInvalidRange is matched by every *InvalidRangeError.
	ErrInvalidRange = errors.New("invalid range in string transliteration")

	// ErrInvalidCodePoint indicates a code point the encoding cannot hold.
	ErrInvalidCodePoint = errors.New("invalid code point")
)

// InvalidByteSequenceError reports malformed bytes at an offset.
type InvalidByteSequenceError struct {
	Encoding encoding.Encoding
	Offset   int
}

// Error implements the error interface.
func (e *InvalidByteSequenceError) Error() string {
	return fmt.Sprintf("invalid byte sequence in %s", e.Encoding.Name())
}

// Is reports whether target is ErrInvalidByteSequence.
func (e *InvalidByteSequenceError) Is(target error) bool {
	return target == ErrInvalidByteSequence
}

// NeedMoreBytes reports a truncated but otherwise valid character.
// N is the number of additional bytes required.
type NeedMoreBytes struct {
	N int
}

// Error implements the error interface.
func (e NeedMoreBytes) Error() string {
	return fmt.Sprintf("incomplete character: %d more byte(s) needed", e.N)
}

// InvalidRangeError reports a transliteration range whose start follows
// its end, such as "z-a".
type InvalidRangeError struct {
	Start, End int
}

// Error implements the error interface.
func (e *InvalidRangeError) Error() string {
	if e.Start < 0x80 && e.End < 0x80 {
		return fmt.Sprintf("invalid range \"%c-%c\" in string transliteration", rune(e.Start), rune(e.End))
	}
	return ErrInvalidRange.Error()
}

// Is reports whether target is ErrInvalidRange.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// lengthError converts a non-positive multibyte length into an error.
func lengthError(enc encoding.Encoding, r, offset int) error {
	if IsNeedMore(r) {
		return NeedMoreBytes{N: NeedMoreLen(r)}
	}
	return &InvalidByteSequenceError{Encoding: enc, Offset: offset}
}
