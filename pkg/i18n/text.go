// Package i18n holds the localization primitives shared by every resource
// kind: per-language text maps, language codes, and name normalization for
// search.
package i18n

import "sort"

// Text maps a language code to a localized string. Not every language needs to
// be present.
type Text map[string]string

// In returns the text for lang, falling back to English, then to the first
// language in sorted order, then to "".
func (t Text) In(lang string) string {
	if s, ok := t[lang]; ok {
		return s
	}
	if s, ok := t[Default]; ok {
		return s
	}
	if len(t) == 0 {
		return ""
	}
	return t[t.Langs()[0]]
}

// Langs returns the languages present in t, sorted.
func (t Text) Langs() []string {
	langs := make([]string, 0, len(t))
	for l := range t {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Merge returns a new Text holding every language of t, overridden by every
// language of next. Neither argument is modified.
func (t Text) Merge(next Text) Text {
	out := make(Text, len(t)+len(next))
	for l, s := range t {
		out[l] = s
	}
	for l, s := range next {
		out[l] = s
	}
	return out
}

// OrEmpty returns t, or an empty Text if t is nil.
func (t Text) OrEmpty() Text {
	if t == nil {
		return Text{}
	}
	return t
}

// Number maps a language code to a number, e.g. a sourcebook page that differs
// between translations.
type Number map[string]float64

// Merge is the Number counterpart of Text.Merge.
func (n Number) Merge(next Number) Number {
	out := make(Number, len(n)+len(next))
	for l, v := range n {
		out[l] = v
	}
	for l, v := range next {
		out[l] = v
	}
	return out
}

// In returns the number for lang and whether it was present.
func (n Number) In(lang string) (float64, bool) {
	v, ok := n[lang]
	return v, ok
}
