package citation

import (
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// yearFiller stands in for a missing year in generated keys.
const yearFiller = "YYYY"

// BaseKey derives a bibliography key from the first author's surname, the
// year and the first one and a half words of the title, e.g.
// "Bernardini1994soundobj". Collisions are handled by the caller.
func BaseKey(author, year, title string) string {
	if year == "" {
		year = yearFiller
	}
	return capitalize(surnameKey(author) + year + titleKey(title))
}

// surnameKey returns the transliterated letters of the first author's
// surname: the last word before the first comma.
func surnameKey(author string) string {
	words := strings.Fields(strings.Split(author, ",")[0])
	if len(words) == 0 {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, slug.Make(words[len(words)-1]))
}

// titleKey returns the first title word plus the first three letters of
// the second one.
func titleKey(title string) string {
	words := strings.FieldsFunc(slug.Make(title), func(r rune) bool { return r == '-' })
	if len(words) == 0 {
		return ""
	}
	key := words[0]
	if len(words) > 1 {
		second := []rune(words[1])
		if len(second) > 3 {
			second = second[:3]
		}
		key += string(second)
	}
	return key
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}
