// Package coderange defines the classification lattice shared by every rope
// and scanning algorithm.
//
// A byte sequence is classified under its encoding as SevenBit (pure
// ASCII), Valid (well formed, some non-ASCII), or Broken (at least one
// malformed unit). Unknown means no classification has been computed yet.
//
// Classification only widens: SevenBit < Valid < Broken. Join computes the
// classification of a concatenation from the classifications of its parts.
package coderange

import "fmt"

// CodeRange classifies a byte sequence under an encoding.
type CodeRange uint8

const (
	// Unknown means the sequence has not been scanned.
	Unknown CodeRange = iota

	// SevenBit means every byte is below 0x80.
	SevenBit

	// Valid means the sequence is well formed and not ASCII-only.
	Valid

	// Broken means the sequence contains at least one malformed unit.
	Broken
)

// String returns the conventional name of the code range.
func (c CodeRange) String() string {
	switch c {
	case Unknown:
		return "UNKNOWN"
	case SevenBit:
		return "7BIT"
	case Valid:
		return "VALID"
	case Broken:
		return "BROKEN"
	default:
		return fmt.Sprintf("CodeRange(%d)", uint8(c))
	}
}

// IsKnown reports whether c carries classification information.
func (c CodeRange) IsKnown() bool {
	return c != Unknown
}

// IsASCIIOnly reports whether c is SevenBit.
func (c CodeRange) IsASCIIOnly() bool {
	return c == SevenBit
}

// Join returns the code range of the concatenation of a sequence
// classified a with one classified b.
//
// Identical inputs reduce to themselves and Broken dominates. Any other
// mix yields Valid. Callers resolve Unknown before joining.
func Join(a, b CodeRange) CodeRange {
	switch {
	case a == b:
		return a
	case a == Broken || b == Broken:
		return Broken
	default:
		return Valid
	}
}

// Parse converts a conventional name back into a CodeRange.
func Parse(s string) (CodeRange, error) {
	switch s {
	case "UNKNOWN", "unknown":
		return Unknown, nil
	case "7BIT", "7bit", "ascii":
		return SevenBit, nil
	case "VALID", "valid":
		return Valid, nil
	case "BROKEN", "broken":
		return Broken, nil
	}
	return Unknown, fmt.Errorf("coderange: unknown code range %q", s)
}
