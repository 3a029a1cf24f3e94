package generate

import (
	"context"

	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/llm"
	"github.com/kerala-navigator/navigator/internal/metrics"
)

// DefaultLocalModels are tried in order against the local model server.
var DefaultLocalModels = []string{"deepseek-v3.2:cloud", "qwen2.5:7b", "phi3"}

const (
	localTemperature = 0.2
	localMaxTokens   = 350
)

const (
	localApologyEN = "I apologize, but I'm currently unable to process your request. Please try again in a moment, or try asking about a specific Kerala government service like Income Certificate, Aadhaar Update, or Ration Card."
	localApologyML = "ക്ഷമിക്കണം, ഇപ്പോൾ നിങ്ങളുടെ അഭ്യർത്ഥന പ്രോസസ് ചെയ്യാൻ കഴിയുന്നില്ല. ദയവായി കുറച്ച് സമയത്തിന് ശേഷം വീണ്ടും ശ്രമിക്കുക. വരുമാന സർട്ടിഫിക്കറ്റ്, ആധാർ അപ്ഡേറ്റ്, റേഷൻ കാർഡ് തുടങ്ങിയ കേരള സർക്കാർ സേവനങ്ങളെ കുറിച്ച് ചോദിച്ച് നോക്കൂ."
)

// LocalChain is the terminal tier: a series of models on one local server,
// ending in a canned apology.
type LocalChain struct {
	provider llm.Provider
	models   []string
	logger   *zap.Logger
}

// NewLocalChain creates the terminal tier. An empty models list selects
// DefaultLocalModels.
func NewLocalChain(provider llm.Provider, models []string, logger *zap.Logger) *LocalChain {
	if len(models) == 0 {
		models = DefaultLocalModels
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalChain{provider: provider, models: models, logger: logger}
}

// Generate returns the first model's answer, or the apology in l when every
// model fails.
func (c *LocalChain) Generate(ctx context.Context, prompt string, l lang.Language) string {
	if c != nil && c.provider != nil {
		for _, model := range c.models {
			text, err := attempt(ctx, c.provider, llm.CompletionRequest{
				Model:       model,
				Temperature: localTemperature,
				MaxTokens:   localMaxTokens,
				Messages: []llm.Message{
					{Role: llm.RoleSystem, Content: LocalSystemPrompt(l)},
					{Role: llm.RoleUser, Content: prompt},
				},
			})
			metrics.ObserveAttempt(metrics.CascadeText, "local/"+model, err)
			if err == nil {
				return text
			}
			c.logger.Warn("local model failed", zap.String("model", model), zap.Error(err))
		}
	}
	return LocalApology(l)
}

// LocalSystemPrompt is the system prompt sent to local models.
func LocalSystemPrompt(l lang.Language) string {
	return lang.Pick(l,
		"You are a Kerala government services assistant. Reply in simple English with clear sections and bullet points.",
		"You are a Kerala government services assistant. Reply only in simple Malayalam script. Use clear headings and bullet points. Keep spaces between words natural. Do not output random or merged text.")
}

// LocalApology is returned when no local model answers.
func LocalApology(l lang.Language) string {
	return lang.Pick(l, localApologyEN, localApologyML)
}
