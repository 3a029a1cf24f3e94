package config

import (
	"time"

	"github.com/kerala-navigator/navigator/internal/generate"
	"github.com/kerala-navigator/navigator/internal/llm"
	"github.com/kerala-navigator/navigator/internal/quality"
	"github.com/kerala-navigator/navigator/internal/server"
	"github.com/kerala-navigator/navigator/internal/voice"
)

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = "navigator.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           server.DefaultPort,
			MaxBodyBytes:   server.DefaultMaxBodyBytes,
			MaxUploadBytes: server.DefaultMaxUploadBytes,
			HistoryTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			Path:        "data/navigator.db",
			SeedOnStart: true,
		},
		Gemini: GeminiConfig{
			Model:   generate.DefaultGeminiModel,
			BaseURL: llm.DefaultGoogleBaseURL,
		},
		HuggingFace: HuggingFaceConfig{
			BaseURL:    llm.DefaultHuggingFaceBaseURL,
			Model:      generate.DefaultHuggingFaceModel,
			WhisperURL: voice.DefaultWhisperURL,
		},
		Ollama: OllamaConfig{
			Host:   llm.DefaultOllamaHost,
			Models: append([]string(nil), generate.DefaultLocalModels...),
		},
		TTS: TTSConfig{
			BaseURL: voice.DefaultTTSURL,
		},
		Quality: quality.DefaultThresholds(),
	}
}
