package i18n

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"
)

// Default is the fallback display language.
const Default = "en"

// ErrUnsupportedLang is returned by ParseLang for a well-formed code that the
// portal has no translations for.
var ErrUnsupportedLang = errors.New("[i18n] - unsupported language")

// Supported lists the display languages the portal ships translations for.
var Supported = []language.Tag{language.English, language.Italian}

var matcher = language.NewMatcher(Supported)

// ParseLang parses a BCP 47 code and returns the base language code of the
// closest supported language, e.g. "it-CH" yields "it".
func ParseLang(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", errors.Wrapf(err, "[i18n] - invalid language %q", code)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", errors.Wrapf(ErrUnsupportedLang, "%q", code)
	}
	base, _ := Supported[idx].Base()
	return base.String(), nil
}

// Codes returns the base codes of the supported languages.
func Codes() []string {
	codes := make([]string, len(Supported))
	for i, t := range Supported {
		base, _ := t.Base()
		codes[i] = base.String()
	}
	return codes
}
