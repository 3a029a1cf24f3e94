package lang

import "strings"

// Language is the response language. Only English and Malayalam are valid.
type Language string

const (
	English   Language = "en"
	Malayalam Language = "ml"
)

// malayalamThreshold is the number of Malayalam code points a message must
// contain before an English request is switched to Malayalam.
const malayalamThreshold = 2

// Parse maps a requested language value to a Language. Anything other than
// "ml" collapses to English.
func Parse(s string) Language {
	if s == string(Malayalam) {
		return Malayalam
	}
	return English
}

// FromAcceptLanguage picks the language from an Accept-Language header. The
// first listed tag wins; only a Malayalam primary subtag selects Malayalam.
func FromAcceptLanguage(header string) Language {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(strings.TrimSpace(first), ";")
	primary, _, _ := strings.Cut(tag, "-")
	if strings.EqualFold(primary, string(Malayalam)) {
		return Malayalam
	}
	return English
}

// IsMalayalam reports whether l is the alternate language.
func (l Language) IsMalayalam() bool {
	return l == Malayalam
}

// Detect decides the response language from the caller's explicit choice and
// the script of the message. Citizens often type in Malayalam script without
// switching the language toggle, so an English request containing enough
// Malayalam characters is answered in Malayalam.
func Detect(requested Language, message string) Language {
	if requested == Malayalam {
		return Malayalam
	}
	if CountMalayalam(message) >= malayalamThreshold {
		return Malayalam
	}
	return English
}

// IsMalayalamRune reports whether r lies in the Malayalam Unicode block.
func IsMalayalamRune(r rune) bool {
	return r >= 0x0D00 && r <= 0x0D7F
}

// CountMalayalam returns the number of Malayalam code points in s.
func CountMalayalam(s string) int {
	n := 0
	for _, r := range s {
		if IsMalayalamRune(r) {
			n++
		}
	}
	return n
}

// Pick returns en or ml depending on l. It is the building block for the
// small bilingual label tables used across the response templates.
func Pick[T any](l Language, en, ml T) T {
	if l == Malayalam {
		return ml
	}
	return en
}
