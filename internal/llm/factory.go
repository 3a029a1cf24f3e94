package llm

import "fmt"

// Options configures a provider built by NewProvider.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewProvider creates a provider of the given kind.
// Supported kinds: "google", "huggingface", "openai", "ollama".
func NewProvider(kind string, opts Options) (Provider, error) {
	switch kind {
	case "google":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("google provider requires an API key")
		}
		return NewGoogleProvider(opts.APIKey, opts.BaseURL, opts.Model), nil

	case "huggingface":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an API key")
		}
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = DefaultHuggingFaceBaseURL
		}
		return NewOpenAIProvider("huggingface", opts.APIKey, baseURL, opts.Model), nil

	case "openai":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAIProvider("openai", opts.APIKey, opts.BaseURL, opts.Model), nil

	case "ollama":
		return NewOllamaProvider(opts.BaseURL, opts.Model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", kind)
	}
}
