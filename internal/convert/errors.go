package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidString is matched by every *InvalidStringError.
	ErrInvalidString = errors.New("invalid value for Integer()")

	// ErrInvalidRadix is matched by every *InvalidRadixError.
	ErrInvalidRadix = errors.New("invalid radix")
)

// InvalidStringError reports input rejected by strict parsing.
type InvalidStringError struct {
	Input  []byte
	Offset int
}

// Error implements the error interface.
func (e *InvalidStringError) Error() string {
	return fmt.Sprintf("invalid value for Integer(): %q", e.Input)
}

// Is reports whether target is ErrInvalidString.
func (e *InvalidStringError) Is(target error) bool {
	return target == ErrInvalidString
}

// InvalidRadixError reports a radix outside 2..36.
type InvalidRadixError struct {
	Radix int
}

// Error implements the error interface.
func (e *InvalidRadixError) Error() string {
	return fmt.Sprintf("invalid radix %d", e.Radix)
}

// Is reports whether target is ErrInvalidRadix.
func (e *InvalidRadixError) Is(target error) bool {
	return target == ErrInvalidRadix
}
