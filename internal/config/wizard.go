package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it. Keys left blank can still be supplied through the
// environment at runtime.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to the Kerala Service Navigator! Let's configure the backend.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 2. Frontend origin.
	frontendPrompt := promptui.Prompt{
		Label:   "Frontend URL allowed by CORS (blank for localhost only)",
		Default: "",
	}
	if cfg.Server.FrontendURL, err = frontendPrompt.Run(); err != nil {
		return nil, fmt.Errorf("frontend url: %w", err)
	}

	// 3. Store.
	storePrompt := promptui.Prompt{
		Label:   "SQLite store path (blank to run on built-in data only)",
		Default: cfg.Store.Path,
	}
	if cfg.Store.Path, err = storePrompt.Run(); err != nil {
		return nil, fmt.Errorf("store path: %w", err)
	}

	// 4. Provider keys.
	keys := []struct {
		label string
		dest  *string
	}{
		{"Gemini primary API key", &cfg.Gemini.PrimaryKey},
		{"Gemini secondary API key", &cfg.Gemini.SecondaryKey},
		{"Gemini voice API key", &cfg.Gemini.VoiceKey},
		{"HuggingFace API key", &cfg.HuggingFace.APIKey},
		{"Google Text-to-Speech API key", &cfg.TTS.APIKey},
	}
	for _, k := range keys {
		p := promptui.Prompt{Label: k.label + " (optional)", Mask: '*'}
		if *k.dest, err = p.Run(); err != nil {
			return nil, fmt.Errorf("%s: %w", k.label, err)
		}
	}

	// 5. Local models.
	modelsPrompt := promptui.Prompt{
		Label:   "Ollama models, in fallback order (comma-separated)",
		Default: strings.Join(cfg.Ollama.Models, ", "),
	}
	modelsStr, err := modelsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("ollama models: %w", err)
	}
	if models := splitAndTrim(modelsStr); len(models) > 0 {
		cfg.Ollama.Models = models
	}

	// 6. Log format.
	formatPrompt := promptui.Select{
		Label: "Log format",
		Items: []string{"console", "json"},
	}
	if _, cfg.Log.Format, err = formatPrompt.Run(); err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}

	if cfg.Gemini.PrimaryKey == "" && cfg.Gemini.SecondaryKey == "" && cfg.HuggingFace.APIKey == "" {
		fmt.Println("\nNote: no remote text provider key set; unmatched questions will be answered by Ollama only.")
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
