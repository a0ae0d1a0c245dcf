package native

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory is matched by every *AllocationError.
	ErrOutOfMemory = errors.New("native: out of memory")

	// ErrReleased is the panic value for use of a released arena or a
	// freed block.
	ErrReleased = errors.New("native: use after release")

	// ErrDoubleRelease is the panic value for releasing an arena or
	// freeing a block twice.
	ErrDoubleRelease = errors.New("native: double release")

	// ErrInvalidSize is returned for negative allocation sizes.
	ErrInvalidSize = errors.New("native: invalid allocation size")
)

// AllocationError reports a failed block allocation.
type AllocationError struct {
	Size int
	Err  error
}

// Error implements the error interface.
func (e *AllocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("native: allocating %d bytes: %v", e.Size, e.Err)
	}
	return fmt.Sprintf("native: allocating %d bytes failed", e.Size)
}

// Unwrap returns the underlying OS error.
func (e *AllocationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrOutOfMemory.
func (e *AllocationError) Is(target error) bool {
	return target == ErrOutOfMemory
}
