package convert

import (
	"math/big"

	"github.com/dshills/ropecore/internal/byteview"
)

// BytesToInteger parses v as an integer in the given radix.
//
// A radix of 0 or -1 auto-detects from a 0x, 0b, 0o, 0d or bare 0 prefix
// and otherwise means 10. A radix below -1 is negated. The resolved radix
// must be within 2..36 or an *InvalidRadixError is returned.
//
// In lenient mode parsing stops at the first character that cannot
// continue the number and anything unparseable yields 0. In strict mode
// the whole input, apart from surrounding whitespace, must be a number;
// otherwise an *InvalidStringError is returned.
func BytesToInteger(v byteview.View, radix int, strict bool) (Integer, error) {
	ps := &parser{data: v.Raw(), end: v.Len(), base: radix, strict: strict}
	return ps.parse()
}

// ParseInteger is BytesToInteger over a string.
func ParseInteger(s string, radix int, strict bool) (Integer, error) {
	return BytesToInteger(byteview.FromString(s), radix, strict)
}

type parser struct {
	data   []byte
	p      int
	end    int
	base   int
	strict bool
}

func (ps *parser) parse() (Integer, error) {
	ps.skipSpace()
	negative := ps.sign()
	if ps.p < ps.end && (ps.data[ps.p] == '+' || ps.data[ps.p] == '-') {
		return ps.invalid()
	}

	ps.resolveBase()
	bits, err := ps.digitBits()
	if err != nil {
		return Integer{}, err
	}
	ps.squeezeZeroes()

	if d := ps.digitAt(ps.p); d < 0 || d >= ps.base {
		return ps.invalid()
	}

	if ps.base <= 10 {
		bits *= ps.decimalRun()
	} else {
		bits *= ps.end - ps.p
	}

	if bits < 63 {
		val, next, ok := ps.parseSmall()
		if ok {
			if next < ps.end && ps.data[next] == '_' {
				return ps.parseBig(negative)
			}
			if ps.strict && !ps.onlySpaceFrom(next) {
				return ps.invalid()
			}
			if negative {
				val = -val
			}
			return Int(val), nil
		}
	}
	return ps.parseBig(negative)
}

func (ps *parser) invalid() (Integer, error) {
	if ps.strict {
		return Integer{}, &InvalidStringError{Input: append([]byte(nil), ps.data[:ps.end]...), Offset: ps.p}
	}
	return Int(0), nil
}

func (ps *parser) skipSpace() {
	for ps.p < ps.end && isSpace(ps.data[ps.p]) {
		ps.p++
	}
}

// sign consumes one sign character and reports whether it was '-'.
func (ps *parser) sign() bool {
	if ps.p < ps.end {
		switch ps.data[ps.p] {
		case '+':
			ps.p++
		case '-':
			ps.p++
			return true
		}
	}
	return false
}

func (ps *parser) resolveBase() {
	if ps.base > 0 {
		return
	}
	switch {
	case ps.p < ps.end && ps.data[ps.p] == '0':
		ps.base = 8
		if ps.p+1 < ps.end {
			switch ps.data[ps.p+1] {
			case 'x', 'X':
				ps.base = 16
			case 'b', 'B':
				ps.base = 2
			case 'o', 'O':
				ps.base = 8
			case 'd', 'D':
				ps.base = 10
			}
		}
	case ps.base < -1:
		ps.base = -ps.base
	default:
		ps.base = 10
	}
}

// digitBits validates the radix, skips a prefix matching it and returns
// an upper bound on the bits each digit contributes.
func (ps *parser) digitBits() (int, error) {
	var second byte
	if ps.p+1 < ps.end && ps.data[ps.p] == '0' {
		second = ps.data[ps.p+1] | 0x20
	}
	skip := func(prefix byte) {
		if second == prefix {
			ps.p += 2
		}
	}

	switch ps.base {
	case 2:
		skip('b')
		return 1, nil
	case 3:
		return 2, nil
	case 4, 5, 6, 7:
		return 3, nil
	case 8:
		skip('o')
		return 3, nil
	case 10:
		skip('d')
		return 4, nil
	case 9, 11, 12, 13, 14, 15:
		return 4, nil
	case 16:
		skip('x')
		return 4, nil
	}
	if err := ValidateRadix(ps.base); err != nil {
		return 0, err
	}
	if ps.base <= 32 {
		return 5, nil
	}
	return 6, nil
}

// squeezeZeroes skips leading zeros and single underscores, keeping the
// last zero when nothing else follows.
func (ps *parser) squeezeZeroes() {
	if ps.p >= ps.end || ps.data[ps.p] != '0' {
		return
	}
	ps.p++
	us := 0
	for ps.p < ps.end {
		c := ps.data[ps.p]
		if c == '_' {
			us++
			if us >= 2 {
				break
			}
		} else if c != '0' {
			break
		}
		ps.p++
	}
	if ps.p == ps.end || isSpace(ps.data[ps.p]) {
		ps.p--
	}
}

func (ps *parser) decimalRun() int {
	n := 0
	for i := ps.p; i < ps.end && ps.data[i] >= '0' && ps.data[i] <= '9'; i++ {
		n++
	}
	return n
}

// parseSmall accumulates digits into an int64. ok is false on overflow.
func (ps *parser) parseSmall() (val int64, next int, ok bool) {
	base := int64(ps.base)
	cutoff := int64(maxInt64) / base
	cutlim := int64(maxInt64) % base

	s := ps.p
	for ; s < ps.end; s++ {
		d := int64(ps.digitAt(s))
		if d < 0 || d >= base {
			break
		}
		if val > cutoff || (val == cutoff && d > cutlim) {
			return 0, s, false
		}
		val = val*base + d
	}
	return val, s, true
}

// parseBig collects digits, dropping single underscores between them.
func (ps *parser) parseBig(negative bool) (Integer, error) {
	if ps.strict && ps.p < ps.end && ps.data[ps.p] == '_' {
		return ps.invalid()
	}

	digits := make([]byte, 0, ps.end-ps.p)
	underscore := false
	for ; ps.p < ps.end; ps.p++ {
		c := ps.data[ps.p]
		if c == '_' {
			if underscore {
				if ps.strict {
					return ps.invalid()
				}
				break
			}
			underscore = true
			continue
		}
		if d := digitValue(c); d < 0 || d >= ps.base {
			break
		}
		underscore = false
		digits = append(digits, c)
	}
	if len(digits) == 0 {
		return Int(0), nil
	}

	if ps.strict && (ps.data[ps.p-1] == '_' || !ps.onlySpaceFrom(ps.p)) {
		return ps.invalid()
	}

	z, ok := new(big.Int).SetString(string(digits), ps.base)
	if !ok {
		return ps.invalid()
	}
	if negative {
		z.Neg(z)
	}
	return BigInt(z), nil
}

func (ps *parser) onlySpaceFrom(i int) bool {
	for i < ps.end && isSpace(ps.data[i]) {
		i++
	}
	return i == ps.end
}

func (ps *parser) digitAt(i int) int {
	if i >= ps.end {
		return -1
	}
	return digitValue(ps.data[i])
}

const maxInt64 = 1<<63 - 1

// ValidateRadix returns an *InvalidRadixError unless 2 <= radix <= 36.
func ValidateRadix(radix int) error {
	if radix < 2 || radix > 36 {
		return &InvalidRadixError{Radix: radix}
	}
	return nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
