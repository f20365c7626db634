package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify folds value to a lowercase ASCII token made of letters, digits, and
// single hyphens. Accented letters lose their marks ("Café" -> "cafe"); every
// other run of characters collapses into one hyphen. Returns "" when nothing
// survives.
func Slugify(value string) string {
	folded := foldASCII(strings.TrimSpace(value))
	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		case r == '\'' || r == '’':
			// apostrophes vanish so "Bayes' Rule" stays "bayes-rule"
		default:
			pendingDash = true
		}
	}
	return b.String()
}

// TitleCase renders value in title case using Unicode-aware casing rules.
func TitleCase(value string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(value))
}

func foldASCII(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}
