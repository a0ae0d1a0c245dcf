package encoding

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// mapRune applies the full Unicode case mapping selected by flags to r.
// The result may be longer than one rune ("ß" upcases to "SS").
func mapRune(flags CaseFlags, r rune) string {
	s := string(r)
	if flags.Has(CaseASCIIOnly) && r >= 0x80 {
		return s
	}
	tag := language.Und
	if flags.Has(CaseFoldTurkishAzeri) {
		tag = language.Turkish
	}

	switch {
	case flags.Has(CaseUpcase | CaseDowncase):
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return cases.Lower(tag).String(s)
		}
		if unicode.IsLower(r) {
			return cases.Upper(tag).String(s)
		}
		return s
	case flags.Has(CaseTitlecase):
		return cases.Title(tag).String(s)
	case flags.Has(CaseUpcase):
		return cases.Upper(tag).String(s)
	case flags.Has(CaseFold):
		if tag != language.Und {
			return cases.Lower(tag).String(s)
		}
		return cases.Fold().String(s)
	case flags.Has(CaseDowncase):
		return cases.Lower(tag).String(s)
	}
	return s
}
