package llm

import "strings"

// DefaultLanguage is used whenever a language cannot be determined.
const DefaultLanguage = "en"

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"bn": "Bengali",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"mr": "Marathi",
	"od": "Odia",
	"pa": "Punjabi",
	"ta": "Tamil",
	"te": "Telugu",
}

// aliases maps alternative codes and spellings onto the codes above.
var aliases = map[string]string{
	"or":      "od",
	"oriya":   "od",
	"bangla":  "bn",
	"panjabi": "pa",
}

// NormalizeLanguage reduces a code, locale tag or language name to a supported
// two-letter code. Anything unrecognised becomes DefaultLanguage.
func NormalizeLanguage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	if _, ok := languageNames[s]; ok {
		return s
	}
	if code, ok := aliases[s]; ok {
		return code
	}
	for code, name := range languageNames {
		if strings.EqualFold(name, s) {
			return code
		}
	}
	return DefaultLanguage
}

// LanguageName returns the English name of a language code.
func LanguageName(code string) string {
	return languageNames[NormalizeLanguage(code)]
}
