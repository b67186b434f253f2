package resource

import "github.com/zuccha/dnd-portal-sub002/pkg/i18n"

// TranslationField points at one localized field of R. Exactly one of Text or
// Number is set.
type TranslationField[R any] struct {
	Name   string
	Text   func(*R) *i18n.Text
	Number func(*R) *i18n.Number
}

// TextField declares a localized string field.
func TextField[R any](name string, get func(*R) *i18n.Text) TranslationField[R] {
	return TranslationField[R]{Name: name, Text: get}
}

// NumberField declares a localized numeric field.
func NumberField[R any](name string, get func(*R) *i18n.Number) TranslationField[R] {
	return TranslationField[R]{Name: name, Number: get}
}

// Merge writes next over prev. Every translation field is merged language by
// language, keeping languages of prev that next lacks; every other field is
// taken from next.
func Merge[R any](prev, next R, fields []TranslationField[R]) R {
	out := next
	for _, f := range fields {
		switch {
		case f.Text != nil:
			*f.Text(&out) = f.Text(&prev).Merge(*f.Text(&next))
		case f.Number != nil:
			*f.Number(&out) = f.Number(&prev).Merge(*f.Number(&next))
		}
	}
	return out
}

// FillText replaces nil text fields of r with empty maps, so localization never
// has to check for nil.
func FillText[R any](r *R, fields []TranslationField[R]) {
	for _, f := range fields {
		if f.Text != nil && *f.Text(r) == nil {
			*f.Text(r) = i18n.Text{}
		}
	}
}

// BaseTranslations declares the localized fields every kind carries: name and
// page. meta points at the Resource embedded in R.
func BaseTranslations[R any](meta func(*R) *Resource) []TranslationField[R] {
	return []TranslationField[R]{
		TextField("name", func(r *R) *i18n.Text { return &meta(r).Name }),
		NumberField("page", func(r *R) *i18n.Number { return &meta(r).Page }),
	}
}
