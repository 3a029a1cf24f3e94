package lang

import (
	"regexp"
	"strings"
)

// synonym folds a colloquial or abbreviated term onto the canonical term
// used by the catalog keywords. Matches are whole-word only.
type synonym struct {
	pattern *regexp.Regexp
	replace string
}

var synonyms = []synonym{
	{regexp.MustCompile(`\baadhar\b`), "aadhaar"},
	{regexp.MustCompile(`\bcert\b`), "certificate"},
	{regexp.MustCompile(`\bpancard\b`), "pan card"},
	{regexp.MustCompile(`\brationcard\b`), "ration card"},
	{regexp.MustCompile(`\blicense\b`), "licence"},
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize canonicalises citizen input: lowercase, synonym folding and
// whitespace collapsing. Empty input normalises to the empty string.
func Normalize(message string) string {
	text := strings.ToLower(message)
	for _, s := range synonyms {
		text = s.pattern.ReplaceAllString(text, s.replace)
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// CollapseSpace lowercases s and collapses whitespace runs. It is the
// normalisation applied to catalog names and keywords before comparison.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(strings.ToLower(s), " "))
}
