package i18n

import (
	"sync"

	"github.com/zuccha/dnd-portal-sub002/pkg/observe"
)

// Locale supplies the active display language and reports when it changes.
type Locale interface {
	Lang() string
	OnChange(fn func(lang string)) observe.Disposer
}

// Translator resolves a UI string table key in a language.
type Translator interface {
	Translate(lang, key string) string
}

// TranslatorFunc adapts a function to a Translator.
type TranslatorFunc func(lang, key string) string

func (f TranslatorFunc) Translate(lang, key string) string { return f(lang, key) }

// Keys is a Translator that returns every key untranslated.
var Keys Translator = TranslatorFunc(func(_, key string) string { return key })

// StaticLocale is an in-process Locale whose language is changed with Set.
type StaticLocale struct {
	mu   sync.Mutex
	lang string
	obs  observe.Set[struct{}, string]
}

var _ Locale = (*StaticLocale)(nil)

// NewStaticLocale returns a StaticLocale starting at lang.
func NewStaticLocale(lang string) *StaticLocale { return &StaticLocale{lang: lang} }

func (l *StaticLocale) Lang() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lang
}

// Set changes the language, notifying listeners if it differs.
func (l *StaticLocale) Set(lang string) {
	l.mu.Lock()
	changed := l.lang != lang
	l.lang = lang
	l.mu.Unlock()
	if changed {
		l.obs.Notify(struct{}{}, lang)
	}
}

func (l *StaticLocale) OnChange(fn func(string)) observe.Disposer {
	return l.obs.Subscribe(struct{}{}, fn)
}

// Table is a Translator backed by a string table. Missing keys translate to
// themselves.
type Table map[string]Text

func (t Table) Translate(lang, key string) string {
	s, ok := t[key]
	if !ok {
		return key
	}
	if v := s.In(lang); v != "" {
		return v
	}
	return key
}
