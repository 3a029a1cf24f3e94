package match

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/lang"
)

const (
	nameScore          = 8
	phraseKeywordScore = 6
	wordKeywordScore   = 2
)

// genericKeywords are English words too common to signal a service on their own.
var genericKeywords = map[string]bool{
	"card":        true,
	"certificate": true,
	"application": true,
	"apply":       true,
	"service":     true,
	"services":    true,
	"new":         true,
	"update":      true,
}

var asciiWord = regexp.MustCompile(`^[a-z]+$`)

// Services finds the best-scoring service record for a query. The remote
// source is consulted first; the local source answers when the remote one is
// absent, fails, or has no positive-scoring candidate.
type Services struct {
	remote catalog.Source
	local  catalog.Source
	logger *zap.Logger
}

// NewServices creates a matcher. remote may be nil.
func NewServices(remote, local catalog.Source, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{remote: remote, local: local, logger: logger}
}

// Match returns the best record for text, or nil when nothing scores above
// zero. Remote errors are logged and never returned.
func (m *Services) Match(ctx context.Context, text string) (*catalog.ServiceRecord, error) {
	text = lang.CollapseSpace(text)

	if m.remote != nil {
		records, err := m.remote.Services(ctx)
		if err != nil {
			m.logger.Warn("remote service lookup failed, using local table", zap.Error(err))
		} else if best, score := Best(text, records); score > 0 {
			return best, nil
		}
	}

	records, err := m.local.Services(ctx)
	if err != nil {
		return nil, err
	}
	best, score := Best(text, records)
	if score <= 0 {
		return nil, nil
	}
	return best, nil
}

// Best returns the record with the strictly highest score and that score.
// Ties keep the earlier record. A nil record is returned when every score is 0.
func Best(text string, records []catalog.ServiceRecord) (*catalog.ServiceRecord, int) {
	var (
		best      *catalog.ServiceRecord
		bestScore int
	)
	for i := range records {
		if s := Score(text, &records[i]); s > bestScore {
			best, bestScore = &records[i], s
		}
	}
	if best == nil {
		return nil, 0
	}
	rec := *best
	return &rec, bestScore
}

// Score rates how well a normalized query matches a record.
func Score(text string, rec *catalog.ServiceRecord) int {
	score := 0
	if name := lang.CollapseSpace(rec.Name.EN); name != "" && strings.Contains(text, name) {
		score += nameScore
	}
	if name := lang.CollapseSpace(rec.Name.ML); name != "" && strings.Contains(text, name) {
		score += nameScore
	}
	for _, kw := range rec.Keywords {
		score += keywordScore(text, kw)
	}
	return score
}

func keywordScore(text, keyword string) int {
	kw := lang.CollapseSpace(keyword)
	if kw == "" {
		return 0
	}
	if strings.Contains(kw, " ") {
		if strings.Contains(text, kw) {
			return phraseKeywordScore
		}
		return 0
	}
	if asciiWord.MatchString(kw) && genericKeywords[kw] {
		return 0
	}
	if hasWholeWord(text, kw) {
		return wordKeywordScore
	}
	return 0
}

// hasWholeWord reports whether word occurs in text on word boundaries.
// Boundaries are meaningless for non-ASCII scripts, so those use containment.
func hasWholeWord(text, word string) bool {
	for _, r := range word {
		if r > unicode.MaxASCII {
			return strings.Contains(text, word)
		}
	}
	return wholeWordPattern(word).MatchString(text)
}

// wordPatterns caches compiled boundary patterns by keyword. Keys come from
// catalog keywords only, so the cache is bounded by the catalog.
var wordPatterns sync.Map // string -> *regexp.Regexp

func wholeWordPattern(word string) *regexp.Regexp {
	if re, ok := wordPatterns.Load(word); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	actual, _ := wordPatterns.LoadOrStore(word, re)
	return actual.(*regexp.Regexp)
}
