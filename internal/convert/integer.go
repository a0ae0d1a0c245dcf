package convert

import (
	"math/big"
	"strconv"
)

// Integer is an arbitrary precision integer that stays in an int64 when
// the value fits.
type Integer struct {
	small int64
	big   *big.Int
}

// Int returns an Integer holding i.
func Int(i int64) Integer {
	return Integer{small: i}
}

// BigInt returns an Integer holding z, demoted to an int64 when it fits.
// z is not retained.
func BigInt(z *big.Int) Integer {
	if z.IsInt64() {
		return Integer{small: z.Int64()}
	}
	return Integer{big: new(big.Int).Set(z)}
}

// IsBig reports whether the value does not fit in an int64.
func (i Integer) IsBig() bool {
	return i.big != nil
}

// Int64 returns the value. It is only meaningful when IsBig is false.
func (i Integer) Int64() int64 {
	if i.big != nil {
		return i.big.Int64()
	}
	return i.small
}

// Big returns the value as a newly allocated big.Int.
func (i Integer) Big() *big.Int {
	if i.big != nil {
		return new(big.Int).Set(i.big)
	}
	return big.NewInt(i.small)
}

// Sign returns -1, 0 or +1.
func (i Integer) Sign() int {
	switch {
	case i.big != nil:
		return i.big.Sign()
	case i.small < 0:
		return -1
	case i.small > 0:
		return 1
	}
	return 0
}

// Cmp compares i and j.
func (i Integer) Cmp(j Integer) int {
	if i.big == nil && j.big == nil {
		switch {
		case i.small < j.small:
			return -1
		case i.small > j.small:
			return 1
		}
		return 0
	}
	return i.Big().Cmp(j.Big())
}

// Text returns the value in the given radix (2..36) with lowercase digits.
func (i Integer) Text(radix int) string {
	if i.big != nil {
		return i.big.Text(radix)
	}
	return string(FormatInt(i.small, radix, false))
}

func (i Integer) String() string {
	if i.big != nil {
		return i.big.String()
	}
	return strconv.FormatInt(i.small, 10)
}
