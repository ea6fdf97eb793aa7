package service

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics removes combining marks after NFD decomposition, so
// "Ingeniería" compares equal to "Ingenieria". Case is preserved; catalog
// matching is case-sensitive on purpose.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeCareerName is the canonical form used on both sides of catalog
// reconciliation.
func NormalizeCareerName(s string) string {
	return stripDiacritics(s)
}
