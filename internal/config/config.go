package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes structured overrides: NAVIGATOR_SERVER__PORT sets server.port.
const EnvPrefix = "NAVIGATOR_"

// legacyEnv maps the conventional deployment variable names onto config keys.
var legacyEnv = map[string]string{
	"PORT":               "server.port",
	"FRONTEND_URL":       "server.frontend_url",
	"NAVIGATOR_DB":       "store.path",
	"GEMINI_KEY_1":       "gemini.primary_key",
	"GEMINI_KEY_2":       "gemini.secondary_key",
	"GEMINI_VOICE_KEY":   "gemini.voice_key",
	"HUGGINGFACE_KEY":    "huggingface.api_key",
	"OLLAMA_HOST":        "ollama.host",
	"GOOGLE_TTS_API_KEY": "tts.api_key",
	"GOOGLE_API_KEY":     "tts.api_key",
	"GCLOUD_API_KEY":     "tts.api_key",

	"GOOGLE_APPLICATION_CREDENTIALS": "tts.credentials_file",
}

// ttsKeyOrder ranks the variables that can carry the TTS key; the first set
// one wins.
var ttsKeyOrder = []string{"GOOGLE_TTS_API_KEY", "GOOGLE_API_KEY", "GCLOUD_API_KEY"}

// listKeys are split on commas when set from the environment.
var listKeys = map[string]bool{"ollama.models": true}

// LoadDotEnv loads variables from the given .env files without overriding
// the existing environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays the
// conventional environment variables and finally NAVIGATOR_* overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults. They are loaded as a layer rather than decoded
	// over, so list values from later layers replace them instead of
	// overwriting them element by element.
	if err := k.Load(defaultsProvider{}, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.ProviderWithValue("", ".", legacyValue), nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	// NAVIGATOR_SERVER__FRONTEND_URL -> server.frontend_url, etc.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", prefixedValue), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// defaultsProvider exposes DefaultConfig as YAML to koanf.
type defaultsProvider struct{}

func (defaultsProvider) ReadBytes() ([]byte, error) {
	return yamlv3.Marshal(DefaultConfig())
}

func (defaultsProvider) Read() (map[string]any, error) {
	return nil, errors.New("defaults provider does not support Read")
}

func legacyValue(name, value string) (string, any) {
	key, ok := legacyEnv[name]
	if !ok || value == "" {
		return "", nil
	}
	if key == "tts.api_key" {
		for _, preferred := range ttsKeyOrder {
			if preferred == name {
				break
			}
			if os.Getenv(preferred) != "" {
				return "", nil
			}
		}
	}
	return key, value
}

func prefixedValue(name, value string) (string, any) {
	key := strings.TrimPrefix(name, EnvPrefix)
	if !strings.Contains(key, "__") {
		return "", nil
	}
	key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
	if listKeys[key] {
		return key, splitAndTrim(value)
	}
	return key, value
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validFormats = map[string]bool{
	"console": true,
	"json":    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 || c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server body limits must be positive")
	}
	if c.Server.HistoryTimeout <= 0 {
		return fmt.Errorf("server.history_timeout must be positive")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be one of console, json", c.Log.Format)
	}

	if c.Gemini.RequestsPerMinute < 0 {
		return fmt.Errorf("gemini.requests_per_minute must not be negative")
	}
	if len(c.Ollama.Models) == 0 {
		return fmt.Errorf("ollama.models must list at least one model")
	}

	q := c.Quality
	if q.MinLength <= 0 || q.MaxRepeatedRun <= 0 || q.MinMalayalamRunes < 0 || q.MaxWordLength <= 0 || q.MinWordCount < 0 {
		return fmt.Errorf("quality thresholds must be positive")
	}
	if q.MinWhitespaceRatio < 0 || q.MinWhitespaceRatio >= 1 {
		return fmt.Errorf("quality.min_whitespace_ratio must be in [0, 1)")
	}

	return nil
}

// splitAndTrim splits a comma-separated string and drops empty items.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
