package generate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/llm"
	"github.com/kerala-navigator/navigator/internal/metrics"
)

// Source tags reported for generated replies.
const (
	SourceGemini      = "gemini"
	SourceHuggingFace = "huggingface"
	SourceLocal       = "local"
)

// Tier is one remote generative provider in the chain.
type Tier struct {
	// Name identifies the tier in logs and metrics, e.g. "gemini-primary".
	Name string
	// Source is the tag reported to callers when this tier answers.
	Source   string
	Provider llm.Provider

	Model       string
	MaxTokens   int
	Temperature float64
	// System, when set, supplies a language-specific system prompt.
	System func(lang.Language) string
}

// Default models for the remote tiers.
const (
	DefaultGeminiModel      = "gemini-2.5-flash"
	DefaultHuggingFaceModel = "HuggingFaceH4/zephyr-7b-beta:featherless-ai"
)

const (
	geminiTemperature      = 1.0
	huggingFaceMaxTokens   = 200
	huggingFaceTemperature = 0.3
)

// GeminiTier builds a Gemini tier using the provider's default sampling.
func GeminiTier(name string, p llm.Provider, model string) Tier {
	if model == "" {
		model = DefaultGeminiModel
	}
	return Tier{
		Name:        name,
		Source:      SourceGemini,
		Provider:    p,
		Model:       model,
		Temperature: geminiTemperature,
	}
}

// HuggingFaceTier builds the alternate-vendor tier with its system prompt.
func HuggingFaceTier(p llm.Provider, model string) Tier {
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	return Tier{
		Name:        "huggingface",
		Source:      SourceHuggingFace,
		Provider:    p,
		Model:       model,
		MaxTokens:   huggingFaceMaxTokens,
		Temperature: huggingFaceTemperature,
		System:      HuggingFaceSystemPrompt,
	}
}

// Result is generated text and the tier that produced it.
type Result struct {
	Text   string
	Source string
}

// Chain tries each tier in order and falls through to the local chain, which
// always answers. Attempts are sequential; a later tier only runs after the
// previous one failed.
type Chain struct {
	tiers  []Tier
	local  *LocalChain
	logger *zap.Logger
}

// NewChain creates a chain over tiers ending in local.
func NewChain(tiers []Tier, local *LocalChain, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{tiers: tiers, local: local, logger: logger}
}

// Generate returns text from the first tier that succeeds. It never fails.
func (c *Chain) Generate(ctx context.Context, r Request) Result {
	prompt := BuildPrompt(r)

	for _, t := range c.tiers {
		req := llm.CompletionRequest{
			Model:       t.Model,
			MaxTokens:   t.MaxTokens,
			Temperature: t.Temperature,
			Messages:    messages(t.System, r.Language, prompt),
		}
		text, err := attempt(ctx, t.Provider, req)
		metrics.ObserveAttempt(metrics.CascadeText, t.Name, err)
		if err == nil {
			return Result{Text: text, Source: t.Source}
		}
		c.logger.Warn("generative tier failed", zap.String("tier", t.Name), zap.Error(err))
	}

	return Result{Text: c.local.Generate(ctx, prompt, r.Language), Source: SourceLocal}
}

func messages(system func(lang.Language) string, l lang.Language, prompt string) []llm.Message {
	var msgs []llm.Message
	if system != nil {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system(l)})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: prompt})
}

// attempt isolates one provider call: a panic becomes an error so it only
// advances the cascade.
func attempt(ctx context.Context, p llm.Provider, req llm.CompletionRequest) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", p.Name(), r)
		}
	}()
	return llm.Prompt(ctx, p, req)
}

// HuggingFaceSystemPrompt is the system prompt for the alternate-vendor tier.
func HuggingFaceSystemPrompt(l lang.Language) string {
	return lang.Pick(l,
		"You are a Kerala government services assistant. Give clear, practical, step-by-step answers in simple English.",
		"You are a Kerala government services assistant. Reply only in clear, simple Malayalam script with short sections and bullet points. Keep spacing between words natural. Do not output gibberish.")
}
