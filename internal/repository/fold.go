package repository

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldSearch normalizes text for the case-insensitive filters. Both the stored
// search columns and the user input go through it, so the database never has
// to case-map non-ASCII letters itself.
//
// Case is folded and diacritics are dropped, so "İstanbul", "ISTANBUL" and
// "istanbul" all fold to "istanbul", and "Şişli" to "sisli".
func foldSearch(s string) string {
	folded := cases.Fold().String(s)

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if r == 'ı' {
				return 'i'
			}
			return r
		}),
		norm.NFC,
	)
	out, _, err := transform.String(t, folded)
	if err != nil {
		return folded
	}
	return out
}
