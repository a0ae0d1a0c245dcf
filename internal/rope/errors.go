package rope

import (
	"errors"
	"fmt"

	"github.com/dshills/ropecore/internal/coderange"
)

// Errors returned or raised by rope operations.
var (
	// ErrFrozen is the panic value for mutating a frozen MutableLeaf.
	ErrFrozen = errors.New("rope: mutable leaf is frozen")

	// ErrCodeRangeMismatch is matched by every *CodeRangeMismatchError.
	ErrCodeRangeMismatch = errors.New("rope: code range mismatch")

	// ErrAliased is matched by every *AliasingError.
	ErrAliased = errors.New("rope: mutable rope attached twice")

	// ErrCapacity indicates a length beyond a native rope's capacity.
	ErrCapacity = errors.New("rope: length exceeds capacity")
)

// CodeRangeMismatchError reports content that contradicts the code range
// or character length asserted by a constructor.
type CodeRangeMismatchError struct {
	Asserted       coderange.CodeRange
	Actual         coderange.CodeRange
	AssertedLength int
	ActualLength   int
}

// Error implements the error interface.
func (e *CodeRangeMismatchError) Error() string {
	if e.Asserted != e.Actual {
		return fmt.Sprintf("rope: content is %v, asserted %v", e.Actual, e.Asserted)
	}
	return fmt.Sprintf("rope: content has %d characters, asserted %d", e.ActualLength, e.AssertedLength)
}

// Is reports whether target is ErrCodeRangeMismatch.
func (e *CodeRangeMismatchError) Is(target error) bool {
	return target == ErrCodeRangeMismatch
}

// AliasingError reports a mutable rope attached to a second owner.
type AliasingError struct {
	Rope Rope
}

// Error implements the error interface.
func (e *AliasingError) Error() string {
	return fmt.Sprintf("rope: mutable %T of %d bytes is already attached", e.Rope, e.Rope.ByteLength())
}

// Is reports whether target is ErrAliased.
func (e *AliasingError) Is(target error) bool {
	return target == ErrAliased
}

// ErrIncompatibleEncoding indicates an operation that needs an ASCII
// compatible encoding.
var ErrIncompatibleEncoding = errors.New("rope: ASCII incompatible encoding")
