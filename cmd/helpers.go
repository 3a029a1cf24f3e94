package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/config"
	"github.com/kerala-navigator/navigator/internal/db"
	"github.com/kerala-navigator/navigator/internal/generate"
	"github.com/kerala-navigator/navigator/internal/history"
	"github.com/kerala-navigator/navigator/internal/llm"
	"github.com/kerala-navigator/navigator/internal/logging"
	"github.com/kerala-navigator/navigator/internal/match"
	"github.com/kerala-navigator/navigator/internal/navigator"
	"github.com/kerala-navigator/navigator/internal/quality"
	"github.com/kerala-navigator/navigator/internal/server"
	"github.com/kerala-navigator/navigator/internal/voice"
)

// app holds the wired components shared by serve and ask.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	database *db.DB // nil when running without a store
	services *catalog.Store
	history  *history.Store
	resolver *navigator.Resolver
	stt      *voice.STT
	tts      *voice.Synthesizer
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `navigator init` to create a config file", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newApp builds every component from cfg. A store that cannot be opened is
// logged and skipped so the service still answers from built-in data.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger}

	if cfg.Store.Path != "" {
		database, err := db.Open(cfg.Store.Path)
		if err != nil {
			logger.Warn("store unavailable, using built-in data", zap.String("path", cfg.Store.Path), zap.Error(err))
		} else {
			a.database = database
			a.services = catalog.NewStore(database)
			a.history = history.NewStore(database)
			if cfg.Store.SeedOnStart {
				if err := seedIfEmpty(ctx, a.services, logger); err != nil {
					logger.Warn("seeding store", zap.Error(err))
				}
			}
		}
	}

	// Untyped nils keep the optional dependencies comparable to nil.
	var remote catalog.Source
	var recorder navigator.Recorder
	if a.services != nil {
		remote = a.services
		recorder = a.history
	}

	a.resolver = navigator.New(navigator.Config{
		LifeEvents:    match.NewLifeEvents(nil),
		Services:      match.NewServices(remote, catalog.NewLocal(nil), logger),
		Generator:     newChain(cfg, logger),
		Gate:          quality.NewGate(cfg.Quality, logger),
		Recorder:      recorder,
		RecordTimeout: cfg.Server.HistoryTimeout,
		Logger:        logger,
	})
	a.stt = newSTT(cfg, logger)
	a.tts = newTTS(ctx, cfg, logger)
	return a, nil
}

// newTTS prefers the API key and falls back to a service account key file.
func newTTS(ctx context.Context, cfg *config.Config, logger *zap.Logger) *voice.Synthesizer {
	if cfg.TTS.APIKey == "" && cfg.TTS.CredentialsFile != "" {
		raw, err := os.ReadFile(cfg.TTS.CredentialsFile)
		if err == nil {
			var s *voice.Synthesizer
			if s, err = voice.NewServiceAccountSynthesizer(ctx, raw, cfg.TTS.BaseURL, logger); err == nil {
				return s
			}
		}
		logger.Warn("tts service account unusable", zap.String("path", cfg.TTS.CredentialsFile), zap.Error(err))
	}
	return voice.NewSynthesizer(cfg.TTS.APIKey, cfg.TTS.BaseURL, logger)
}

// newChain assembles the text tiers in priority order. Tiers without a key
// are skipped; the local tier is always present.
func newChain(cfg *config.Config, logger *zap.Logger) *generate.Chain {
	var tiers []generate.Tier
	for _, t := range []struct{ name, key string }{
		{"gemini-primary", cfg.Gemini.PrimaryKey},
		{"gemini-secondary", cfg.Gemini.SecondaryKey},
	} {
		p, err := llm.NewProvider("google", llm.Options{APIKey: t.key, BaseURL: cfg.Gemini.BaseURL, Model: cfg.Gemini.Model})
		if err != nil {
			logger.Info("text tier disabled", zap.String("tier", t.name), zap.Error(err))
			continue
		}
		p = llm.NewRateLimitedProvider(p, cfg.Gemini.RequestsPerMinute)
		tiers = append(tiers, generate.GeminiTier(t.name, p, cfg.Gemini.Model))
	}

	hf, err := llm.NewProvider("huggingface", llm.Options{
		APIKey:  cfg.HuggingFace.APIKey,
		BaseURL: cfg.HuggingFace.BaseURL,
		Model:   cfg.HuggingFace.Model,
	})
	if err != nil {
		logger.Info("text tier disabled", zap.String("tier", "huggingface"), zap.Error(err))
	} else {
		tiers = append(tiers, generate.HuggingFaceTier(hf, cfg.HuggingFace.Model))
	}

	ollama, _ := llm.NewProvider("ollama", llm.Options{BaseURL: cfg.Ollama.Host})
	local := generate.NewLocalChain(ollama, cfg.Ollama.Models, logger)
	return generate.NewChain(tiers, local, logger)
}

func newSTT(cfg *config.Config, logger *zap.Logger) *voice.STT {
	var transcribers []voice.Transcriber
	if p, err := llm.NewProvider("google", llm.Options{APIKey: cfg.Gemini.VoiceKey, BaseURL: cfg.Gemini.BaseURL, Model: cfg.Gemini.Model}); err == nil {
		transcribers = append(transcribers, voice.NewGeminiTranscriber(p, cfg.Gemini.Model))
	} else {
		logger.Info("voice tier disabled", zap.String("tier", voice.SourceGeminiVoice), zap.Error(err))
	}
	if cfg.HuggingFace.APIKey != "" {
		transcribers = append(transcribers, voice.NewWhisperTranscriber(cfg.HuggingFace.APIKey, cfg.HuggingFace.WhisperURL))
	} else {
		logger.Info("voice tier disabled", zap.String("tier", voice.SourceWhisper))
	}
	return voice.NewSTT(logger, transcribers...)
}

// serverDeps exposes the app to the HTTP layer, leaving store-backed routes
// unset when there is no store.
func (a *app) serverDeps() server.Deps {
	deps := server.Deps{
		Resolver: a.resolver,
		STT:      a.stt,
		TTS:      a.tts,
		Logger:   a.logger,
	}
	if a.database != nil {
		deps.History = a.history
		deps.Services = a.services
	}
	return deps
}

// Close waits for pending history writes, then releases the store.
func (a *app) Close() {
	a.resolver.Wait()
	if a.database != nil {
		a.database.Close()
	}
	_ = a.logger.Sync()
}
