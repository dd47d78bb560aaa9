package clip

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"glossaudio/internal/services"
)

// Language is the ISO 639-1 code of a clip's language.
type Language string

// Languages the glossary carries pronunciations for.
const (
	English Language = "en"
	Spanish Language = "es"
)

var manifestNames = map[string]Language{
	"English": English,
	"Spanish": Spanish,
}

// ParseLanguage maps a manifest language cell ("English", "spanish") to a
// Language. Any other value, including "Unknown", is rejected.
func ParseLanguage(cell string) (Language, error) {
	name := cases.Title(language.English).String(strings.TrimSpace(cell))
	if lang, ok := manifestNames[name]; ok {
		return lang, nil
	}
	return "", fmt.Errorf("%w: %q", services.ErrBadLanguage, cell)
}

// Code returns the two-letter code carried on Media content descriptions.
func (l Language) Code() string {
	return string(l)
}

// Tag returns the BCP 47 tag for the language.
func (l Language) Tag() language.Tag {
	switch l {
	case English:
		return language.English
	case Spanish:
		return language.Spanish
	default:
		return language.Und
	}
}

// Name returns the manifest spelling of the language.
func (l Language) Name() string {
	switch l {
	case English:
		return "English"
	case Spanish:
		return "Spanish"
	default:
		return string(l)
	}
}

// NameBlock returns the glossary term name element holding names in this language.
func (l Language) NameBlock() string {
	if l == Spanish {
		return "TranslatedName"
	}
	return "TermName"
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == English || l == Spanish
}
