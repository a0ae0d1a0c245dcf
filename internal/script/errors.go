package script

import "errors"

var (
	// ErrStateClosed is returned by operations on a closed State.
	ErrStateClosed = errors.New("script: state is closed")

	// ErrNoArena is raised by rope.native when the State has no arena.
	ErrNoArena = errors.New("script: no native arena configured")

	// ErrFrozen is raised by the mutating methods of a frozen String.
	ErrFrozen = errors.New("script: can't modify frozen String")
)
