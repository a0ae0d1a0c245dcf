package encoding

// ConstantNames derives the constant identifiers an encoding name is
// exposed under: "UTF-8" gives UTF_8, "Windows-1252" gives Windows_1252 and
// WINDOWS_1252, and "eucJP" gives EucJP and EUCJP. Names starting with a
// digit have no constant form.
func ConstantNames(name string) []string {
	if name == "" || isDigitByte(name[0]) {
		return nil
	}

	var names []string
	hasUpper, hasLower := false, false
	s := 0
	if isASCIIUpper(name[0]) {
		hasUpper = true
		for s++; s < len(name) && (isAlnumByte(name[s]) || name[s] == '_'); s++ {
			if isASCIILower(name[s]) {
				hasLower = true
			}
		}
	}

	valid := s >= len(name)
	if valid {
		names = append(names, name)
		if !hasLower {
			return names
		}
	}

	for ; s < len(name) && (!hasLower || !hasUpper); s++ {
		if isASCIILower(name[s]) {
			hasLower = true
		}
		if isASCIIUpper(name[s]) {
			hasUpper = true
		}
	}

	c := []byte(name)
	if !valid {
		if isASCIILower(c[0]) {
			c[0] ^= 0x20
		}
		for i := range c {
			if !isAlnumByte(c[i]) {
				c[i] = '_'
			}
		}
		if hasUpper {
			names = append(names, string(c))
		}
	}
	if hasLower {
		for i := range c {
			if isASCIILower(c[i]) {
				c[i] ^= 0x20
			}
		}
		names = append(names, string(c))
	}
	return names
}

func isDigitByte(c byte) bool { return '0' <= c && c <= '9' }
func isAlnumByte(c byte) bool { return isDigitByte(c) || isASCIIUpper(c) || isASCIILower(c) }
