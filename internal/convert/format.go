package convert

const (
	lowerDigits = "0123456789abcdefghijklmnopqrstuvwxyz"
	upperDigits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func digitMap(upper bool) string {
	if upper {
		return upperDigits
	}
	return lowerDigits
}

// FormatInt returns the signed representation of i in radix.
// It panics if radix is outside 2..36.
func FormatInt(i int64, radix int, upper bool) []byte {
	if err := ValidateRadix(radix); err != nil {
		panic(err)
	}
	if i == 0 {
		return []byte{'0'}
	}
	digits := digitMap(upper)

	u := uint64(i)
	neg := i < 0
	if neg {
		u = -u
	}

	var buf [65]byte
	pos := len(buf)
	r := uint64(radix)
	for u > 0 {
		pos--
		buf[pos] = digits[u%r]
		u /= r
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return append([]byte(nil), buf[pos:]...)
}

// FormatUnsigned returns the bits of i, read as unsigned, in radix
// 1<<shift. It panics unless 1 <= shift <= 4.
func FormatUnsigned(i int64, shift int, upper bool) []byte {
	checkShift(shift)
	digits := digitMap(upper)
	mask := uint64(1)<<shift - 1

	u := uint64(i)
	var buf [64]byte
	pos := len(buf)
	for {
		pos--
		buf[pos] = digits[u&mask]
		u >>= shift
		if u == 0 {
			break
		}
	}
	return append([]byte(nil), buf[pos:]...)
}

// TwosComplementDigits renders a big-endian two's complement byte string
// in radix 1<<shift, producing exactly ceil(8*len(in)/shift) digits.
// It panics unless 1 <= shift <= 4.
func TwosComplementDigits(in []byte, shift int, upper bool) []byte {
	checkShift(shift)
	digits := digitMap(upper)
	mask := 1<<shift - 1

	out := make([]byte, (len(in)*8+shift-1)/shift)
	bitbuf, bitcnt := 0, 0
	i := len(in)
	for o := len(out) - 1; o >= 0; o-- {
		if bitcnt < shift && i > 0 {
			i--
			bitbuf |= int(in[i]) << bitcnt
			bitcnt += 8
		}
		out[o] = digits[bitbuf&mask]
		bitbuf >>= shift
		bitcnt -= shift
	}
	return out
}

func checkShift(shift int) {
	if shift < 1 || shift > 4 {
		panic("convert: shift must be 1-4")
	}
}
