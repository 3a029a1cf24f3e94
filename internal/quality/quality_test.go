package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kerala-navigator/navigator/internal/lang"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"zero width", "Apply\u200b at\u200c the\u200d office\ufeff", "Apply at the office"},
		{"line endings", "a\r\nb", "a\nb"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"numbered list", "1.Visit office\n2.Pay fee", "1. Visit office\n2. Pay fee"},
		{"bullets", "-Aadhaar\n•Photo\n*Form", "- Aadhaar\n• Photo\n* Form"},
		{"indented bullet", "Documents:\n  -Ration card", "Documents:\n  - Ration card"},
		{"hyphenated word", "Apply on e-District today", "Apply on e-District today"},
		{"bold", "**Documents:** Aadhaar", "**Documents:** Aadhaar"},
		{"bold after text", "Bring **two** photos", "Bring **two** photos"},
		{"rule", "Step one\n---\nStep two", "Step one\n---\nStep two"},
		{"mid-line dash", "Fee: 10-20 rupees", "Fee: 10-20 rupees"},
		{"trim", "  \n hello \n ", "hello"},
		{"decimal untouched when spaced", "Fee is 1. 5 lakh", "Fee is 1. 5 lakh"},
		{"decimal fee", "Fee is ₹1.5 lakh", "Fee is ₹1.5 lakh"},
		{"two digit step", "10.Collect certificate", "10. Collect certificate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestRejectRules(t *testing.T) {
	g := NewGate(DefaultThresholds(), nil)
	valid := "Visit the Akshaya centre with your Aadhaar card and address proof."

	tests := []struct {
		name   string
		text   string
		lang   lang.Language
		reject bool
	}{
		{"valid english", valid, lang.English, false},
		{"short english", "0123456789", lang.English, true},
		{"short malayalam", "ആധാർ കാർഡ", lang.Malayalam, true},
		{"undefined token", valid + " undefined", lang.English, true},
		{"null token any case", valid + " NULL", lang.English, true},
		{"object placeholder", valid + " [object Object]", lang.English, true},
		{"replacement char", valid + " \ufffd", lang.English, true},
		{"nine repeats", valid + " aaaaaaaaa", lang.English, true},
		{"eight repeats", valid + " aaaaaaaa", lang.English, false},
		{"repeated newlines do not count", valid + "\n\n" + valid, lang.English, false},
		{"no whitespace long text", strings.Repeat("abcdefghij", 20), lang.English, true},
		{"no whitespace short text", strings.Repeat("abcdefghij", 11), lang.English, false},
		{"english reply in malayalam mode", valid, lang.Malayalam, true},
		{"malayalam spread over eight words", "കഖoffice ഗഘvisit ങtoday ചplease ഛhelp ജnow ഝhere ഞthanks", lang.Malayalam, false},
		{"merged malayalam word", "ആധാർകാർഡ്വിലാസംമാറ്റാൻഅക്ഷയകേന്ദ്രത്തിൽപോകുക ശരി", lang.Malayalam, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := g.Reject(tt.text, tt.lang)
			if tt.reject {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}

func TestLengthsCountCharacters(t *testing.T) {
	g := NewGate(DefaultThresholds(), nil)
	// 15 characters, 41 bytes.
	assert.NotEmpty(t, g.Reject("ആധാർ കാർഡ് ഫീസ്", lang.Malayalam))
}

func TestFinalize(t *testing.T) {
	g := NewGate(DefaultThresholds(), nil)

	good := "1.Visit the Akshaya centre\n2.Submit your documents"
	assert.Equal(t, "1. Visit the Akshaya centre\n2. Submit your documents", g.Finalize(good, lang.English))

	assert.Equal(t, SafeFallback(lang.English), g.Finalize("ok", lang.English))
	assert.Equal(t, SafeFallback(lang.Malayalam), g.Finalize("ok", lang.Malayalam))
	assert.True(t, strings.HasPrefix(SafeFallback(lang.Malayalam), "## സഹായിക്കാം"))
}

func TestCustomThresholds(t *testing.T) {
	limits := DefaultThresholds()
	limits.MinLength = 5
	g := NewGate(limits, nil)
	assert.Empty(t, g.Reject("short", lang.English))
}

func TestSafeFallbackPassesGate(t *testing.T) {
	g := NewGate(DefaultThresholds(), nil)
	for _, l := range []lang.Language{lang.English, lang.Malayalam} {
		assert.Equal(t, SafeFallback(l), g.Finalize(SafeFallback(l), l))
	}
}
