package i18n

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s for search: it decomposes the string, drops combining
// marks, and lowercases the result, so "Épée" and "epee" normalize equally.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Matches reports whether any language of t contains the normalized needle.
// An empty needle matches everything.
func (t Text) Matches(needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return true
	}
	for _, s := range t {
		if strings.Contains(Normalize(s), n) {
			return true
		}
	}
	return false
}
