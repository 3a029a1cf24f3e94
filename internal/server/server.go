// Package server exposes the navigator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/history"
	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/navigator"
	"github.com/kerala-navigator/navigator/internal/voice"
)

const (
	DefaultPort           = 5000
	DefaultMaxBodyBytes   = 10 << 20
	DefaultMaxUploadBytes = 10 << 20
)

// Config holds server configuration.
type Config struct {
	Port           int
	FrontendURL    string // trusted browser origin in addition to localhost
	MaxBodyBytes   int64
	MaxUploadBytes int64
}

// Resolver answers citizen queries.
type Resolver interface {
	Resolve(ctx context.Context, q navigator.Query) (navigator.Result, error)
}

// HistoryReader lists a caller's recent exchanges.
type HistoryReader interface {
	Recent(ctx context.Context, userID string) ([]history.Entry, error)
}

// ServiceLookup fetches a single service record.
type ServiceLookup interface {
	Service(ctx context.Context, id string) (*catalog.ServiceRecord, error)
}

// Transcriber converts recorded speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, a voice.Audio, l lang.Language) (voice.Transcript, error)
}

// Synthesizer converts text to speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, l lang.Language) (voice.Speech, error)
}

// Deps are the collaborators behind the routes. History and Services are nil
// when no store is configured; the affected routes degrade instead of failing.
type Deps struct {
	Resolver Resolver
	History  HistoryReader
	Services ServiceLookup
	STT      Transcriber
	TTS      Synthesizer
	Logger   *zap.Logger
}

// Server is the navigator HTTP API.
type Server struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	router chi.Router
}

// New creates a server with all routes registered.
func New(cfg Config, deps Deps) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger,
	}
	s.router = s.buildRouter()
	return s
}

var localOrigin = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1)(:\d+)?$`)

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(recoverJSON(s.logger))

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  s.allowOrigin,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Endpoint not found", Status: statusError})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed", Status: statusError})
	})

	r.Get("/", s.handleInfo)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": statusOK})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/chats/", s.handleChats)
	r.Get("/chats/{userId}", s.handleChats)
	r.Get("/todo/", s.handleTodo)
	r.Get("/todo/{serviceId}", s.handleTodo)

	r.Post("/whisper", s.handleWhisper)
	r.With(limitBody(s.cfg.MaxBodyBytes)).Post("/tts", s.handleTTS)
	r.With(limitBody(s.cfg.MaxBodyBytes)).Post("/ai", s.handleAI)

	return r
}

// allowOrigin admits requests without an Origin, any localhost origin and
// the configured frontend.
func (s *Server) allowOrigin(_ *http.Request, origin string) bool {
	if origin == "" || localOrigin.MatchString(origin) {
		return true
	}
	return s.cfg.FrontendURL != "" && origin == s.cfg.FrontendURL
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// DefaultDrainTimeout bounds how long Run waits for in-flight requests.
const DefaultDrainTimeout = 10 * time.Second

// Run listens on the configured port and serves until ctx is cancelled. It
// returns only after in-flight requests have drained or drain has elapsed,
// so callers may release shared resources as soon as it returns.
func (s *Server) Run(ctx context.Context, drain time.Duration) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", s.cfg.Port, err)
	}
	return s.serve(ctx, ln, drain)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, drain time.Duration) error {
	if drain <= 0 {
		drain = DefaultDrainTimeout
	}
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drain)
		defer cancel()
		drained <- httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("navigator listening", zap.String("addr", ln.Addr().String()))
	if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Serve returns as soon as Shutdown starts; wait for the drain.
	if err := <-drained; err != nil {
		return fmt.Errorf("draining requests: %w", err)
	}
	return nil
}
