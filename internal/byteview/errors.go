package byteview

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is matched by every *OutOfBoundsError via errors.Is.
var ErrOutOfBounds = errors.New("index out of bounds")

// OutOfBoundsError describes an index or range that falls outside a View.
type OutOfBoundsError struct {
	// Op is the operation that was attempted.
	Op string
	// Start and End delimit the requested range. For single index
	// operations End is Start+1.
	Start, End int
	// Length is the length of the view the range was applied to.
	Length int
}

// Error implements the error interface.
func (e *OutOfBoundsError) Error() string {
	if e.End == e.Start+1 {
		return fmt.Sprintf("byteview: %s: index %d out of bounds for length %d", e.Op, e.Start, e.Length)
	}
	return fmt.Sprintf("byteview: %s: range [%d, %d) out of bounds for length %d", e.Op, e.Start, e.End, e.Length)
}

// Is reports whether target is ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

func checkIndex(op string, i, length int) {
	if i < 0 || i >= length {
		panic(&OutOfBoundsError{Op: op, Start: i, End: i + 1, Length: length})
	}
}

func checkRange(op string, start, end, length int) {
	if err := rangeError(op, start, end, length); err != nil {
		panic(err)
	}
}

func rangeError(op string, start, end, length int) error {
	if start < 0 || end < start || end > length {
		return &OutOfBoundsError{Op: op, Start: start, End: end, Length: length}
	}
	return nil
}
