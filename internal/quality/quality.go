// Package quality cleans generated text and replaces unusable output with a
// fixed, localized reformulation prompt.
package quality

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/metrics"
)

// Thresholds are the heuristic limits of the gate. Lengths count characters
// (runes), not bytes.
type Thresholds struct {
	MinLength           int     `koanf:"min_length" yaml:"min_length"`
	MaxRepeatedRun      int     `koanf:"max_repeated_run" yaml:"max_repeated_run"`
	WhitespaceMinLength int     `koanf:"whitespace_min_length" yaml:"whitespace_min_length"`
	MinWhitespaceRatio  float64 `koanf:"min_whitespace_ratio" yaml:"min_whitespace_ratio"`
	MinMalayalamRunes   int     `koanf:"min_malayalam_runes" yaml:"min_malayalam_runes"`
	MaxWordLength       int     `koanf:"max_word_length" yaml:"max_word_length"`
	MinWordCount        int     `koanf:"min_word_count" yaml:"min_word_count"`
}

// DefaultThresholds returns the tuned production limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinLength:           25,
		MaxRepeatedRun:      8,
		WhitespaceMinLength: 120,
		MinWhitespaceRatio:  0.04,
		MinMalayalamRunes:   8,
		MaxWordLength:       38,
		MinWordCount:        6,
	}
}

var (
	zeroWidth     = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "", "\r\n", "\n")
	blankRuns     = regexp.MustCompile(`\n{3,}`)
	digitDot      = regexp.MustCompile(`(?m)^([ \t]*[0-9]+)\.(\S)`)
	listMarker    = regexp.MustCompile(`(?m)^([ \t]*[•*-])([^\s•*-])`)
	brokenRender  = regexp.MustCompile(`(?i)undefined|null|\[object Object\]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Clean strips zero-width characters, normalizes line endings, collapses
// runs of blank lines and puts a single space after list markers. Only a
// marker that opens a line counts, so hyphenated words and **bold** survive.
func Clean(text string) string {
	text = zeroWidth.Replace(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = digitDot.ReplaceAllString(text, "$1. $2")
	text = listMarker.ReplaceAllString(text, "$1 $2")
	return strings.TrimSpace(text)
}

// Gate classifies generated text and substitutes the safe template for
// anything unusable.
type Gate struct {
	limits Thresholds
	logger *zap.Logger
}

// NewGate creates a gate with the given limits.
func NewGate(limits Thresholds, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{limits: limits, logger: logger}
}

// Finalize cleans text and returns it, or the safe fallback reply for l when
// the cleaned text is low quality. It never retries.
func (g *Gate) Finalize(text string, l lang.Language) string {
	cleaned := Clean(text)
	if reason := g.Reject(cleaned, l); reason != "" {
		g.logger.Info("generated reply rejected", zap.String("reason", reason), zap.String("language", string(l)))
		metrics.QualityRejections.WithLabelValues(string(l)).Inc()
		return SafeFallback(l)
	}
	return cleaned
}

// Reject reports why already-cleaned text is low quality, or "" when it is
// acceptable.
func (g *Gate) Reject(text string, l lang.Language) string {
	n := utf8.RuneCountInString(text)
	if n < g.limits.MinLength {
		return "too short"
	}
	if brokenRender.MatchString(text) {
		return "broken render token"
	}
	if strings.ContainsRune(text, utf8.RuneError) {
		return "replacement character"
	}
	if longestRun(text) > g.limits.MaxRepeatedRun {
		return "repeated character"
	}

	if n > g.limits.WhitespaceMinLength {
		spaces := 0
		for _, r := range text {
			if unicode.IsSpace(r) {
				spaces++
			}
		}
		if float64(spaces)/float64(n) < g.limits.MinWhitespaceRatio {
			return "too little whitespace"
		}
	}

	if l.IsMalayalam() {
		if lang.CountMalayalam(text) < g.limits.MinMalayalamRunes {
			return "not enough malayalam"
		}
		words := whitespaceRun.Split(text, -1)
		longest := 0
		for _, w := range words {
			longest = max(longest, utf8.RuneCountInString(w))
		}
		if longest > g.limits.MaxWordLength && len(words) < g.limits.MinWordCount {
			return "merged words"
		}
	}
	return ""
}

// longestRun returns the length of the longest run of one repeated character,
// ignoring newlines.
func longestRun(text string) int {
	var (
		prev    rune = -1
		run     int
		longest int
	)
	for _, r := range text {
		if r == '\n' {
			prev, run = -1, 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		longest = max(longest, run)
	}
	return longest
}

const safeFallbackEN = `## I can help

Sorry, I could not generate a clear answer right now.

Please ask again in this short format:
- Service name
- District/place
- Exact help needed

Example: "What documents are required for Aadhaar address update in Thiruvananthapuram?"`

const safeFallbackML = `## സഹായിക്കാം

ക്ഷമിക്കണം, ഇപ്പോൾ വ്യക്തമായ മറുപടി തയ്യാറാക്കാൻ കഴിഞ്ഞില്ല.

ദയവായി ചോദ്യം ഇങ്ങനെ ചെറിയ രൂപത്തിൽ വീണ്ടും ചോദിക്കുക:
- സേവനത്തിന്റെ പേര്
- ഏത് ജില്ല/സ്ഥലം
- നിങ്ങൾക്ക് വേണ്ട പ്രത്യേക സഹായം

ഉദാഹരണം: "ആധാർ വിലാസം മാറ്റാൻ തിരുവനന്തപുരംയിൽ എന്ത് രേഖകൾ വേണം?"`

// SafeFallback is the static reformulation guidance shown instead of
// low-quality output.
func SafeFallback(l lang.Language) string {
	return lang.Pick(l, safeFallbackEN, safeFallbackML)
}
