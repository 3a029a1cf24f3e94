package config

import (
	"time"

	"github.com/kerala-navigator/navigator/internal/quality"
)

// Config is the top-level navigator configuration, corresponding to navigator.yml.
type Config struct {
	Server      ServerConfig       `yaml:"server" koanf:"server"`
	Log         LogConfig          `yaml:"log" koanf:"log"`
	Store       StoreConfig        `yaml:"store" koanf:"store"`
	Gemini      GeminiConfig       `yaml:"gemini" koanf:"gemini"`
	HuggingFace HuggingFaceConfig  `yaml:"huggingface" koanf:"huggingface"`
	Ollama      OllamaConfig       `yaml:"ollama" koanf:"ollama"`
	TTS         TTSConfig          `yaml:"tts" koanf:"tts"`
	Quality     quality.Thresholds `yaml:"quality" koanf:"quality"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port           int           `yaml:"port" koanf:"port"`
	FrontendURL    string        `yaml:"frontend_url" koanf:"frontend_url"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" koanf:"max_body_bytes"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" koanf:"max_upload_bytes"`
	HistoryTimeout time.Duration `yaml:"history_timeout" koanf:"history_timeout"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// StoreConfig locates the SQLite store. An empty path runs without a store:
// matching uses the built-in tables and history is not kept.
type StoreConfig struct {
	Path        string `yaml:"path" koanf:"path"`
	SeedOnStart bool   `yaml:"seed_on_start" koanf:"seed_on_start"`
}

// GeminiConfig holds one key per Gemini tier. RequestsPerMinute caps each
// key separately; zero means unlimited.
type GeminiConfig struct {
	PrimaryKey        string `yaml:"primary_key" koanf:"primary_key"`
	SecondaryKey      string `yaml:"secondary_key" koanf:"secondary_key"`
	VoiceKey          string `yaml:"voice_key" koanf:"voice_key"`
	Model             string `yaml:"model" koanf:"model"`
	BaseURL           string `yaml:"base_url" koanf:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// HuggingFaceConfig covers the router text tier and Whisper transcription.
type HuggingFaceConfig struct {
	APIKey     string `yaml:"api_key" koanf:"api_key"`
	BaseURL    string `yaml:"base_url" koanf:"base_url"`
	Model      string `yaml:"model" koanf:"model"`
	WhisperURL string `yaml:"whisper_url" koanf:"whisper_url"`
}

// OllamaConfig is the local terminal tier. Models are tried in order.
type OllamaConfig struct {
	Host   string   `yaml:"host" koanf:"host"`
	Models []string `yaml:"models" koanf:"models"`
}

// TTSConfig holds Google Cloud Text-to-Speech settings. CredentialsFile is a
// service account key used only when APIKey is empty.
type TTSConfig struct {
	APIKey          string `yaml:"api_key" koanf:"api_key"`
	CredentialsFile string `yaml:"credentials_file,omitempty" koanf:"credentials_file"`
	BaseURL         string `yaml:"base_url" koanf:"base_url"`
}
