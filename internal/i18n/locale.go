// Package i18n holds the current user interface locale.
package i18n

import "golang.org/x/text/language"

// Supported lists the locales with translations. The first entry is the fallback.
var Supported = []language.Tag{
	language.English,
	language.Thai,
}

var matcher = language.NewMatcher(Supported)

// Locale is the current locale of the user interface
type Locale struct {
	tag language.Tag
}

// NewLocale returns a Locale set to the fallback locale
func NewLocale() *Locale {
	return &Locale{tag: Supported[0]}
}

// Set switches to the supported locale closest to code. Unknown or malformed
// codes select the fallback.
func (l *Locale) Set(code string) {
	tag, err := language.Parse(code)
	if err != nil {
		l.tag = Supported[0]
		return
	}
	_, index, _ := matcher.Match(tag)
	l.tag = Supported[index]
}

// Tag returns the current locale
func (l *Locale) Tag() language.Tag {
	return l.tag
}

// Code returns the base language code of the current locale, e.g. "th"
func (l *Locale) Code() string {
	base, _ := l.tag.Base()
	return base.String()
}
