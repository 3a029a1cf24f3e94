// Package navigator resolves a citizen query to a reply: curated life events
// first, then curated services, then generated text behind the quality gate.
package navigator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/format"
	"github.com/kerala-navigator/navigator/internal/generate"
	"github.com/kerala-navigator/navigator/internal/geo"
	"github.com/kerala-navigator/navigator/internal/history"
	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/match"
	"github.com/kerala-navigator/navigator/internal/metrics"
	"github.com/kerala-navigator/navigator/internal/quality"
)

// Source tags for structured matches.
const (
	SourceLifeEvent = "life-event"
	SourceCatalog   = "catalog"
)

// Message length limits in runes, after trimming. Every entry point enforces
// them before calling Resolve.
const (
	MinMessageLen = 2
	MaxMessageLen = 500
)

// DefaultRecordTimeout bounds a background history write.
const DefaultRecordTimeout = 5 * time.Second

// Query is one validated citizen request.
type Query struct {
	Message  string
	UserID   string
	Language lang.Language
	Location *geo.Location
}

// Result is the resolved reply. Service is set only for catalog matches and
// LifeEvent only for life-event matches.
type Result struct {
	Reply     string
	Source    string
	Language  lang.Language
	ServiceID string
	Service   *catalog.ServiceRecord
	LifeEvent *catalog.LifeEvent
}

// Generator produces free text for unmatched queries. It must always answer.
type Generator interface {
	Generate(ctx context.Context, r generate.Request) generate.Result
}

// Recorder persists answered queries.
type Recorder interface {
	Append(ctx context.Context, e history.Entry) error
}

// Config wires a Resolver. Recorder may be nil.
type Config struct {
	LifeEvents    *match.LifeEvents
	Services      *match.Services
	Generator     Generator
	Gate          *quality.Gate
	Recorder      Recorder
	RecordTimeout time.Duration
	Logger        *zap.Logger
}

// Resolver runs the resolution pipeline.
type Resolver struct {
	lifeEvents    *match.LifeEvents
	services      *match.Services
	generator     Generator
	gate          *quality.Gate
	recorder      Recorder
	recordTimeout time.Duration
	logger        *zap.Logger

	pending sync.WaitGroup
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = DefaultRecordTimeout
	}
	if cfg.Gate == nil {
		cfg.Gate = quality.NewGate(quality.DefaultThresholds(), cfg.Logger)
	}
	return &Resolver{
		lifeEvents:    cfg.LifeEvents,
		services:      cfg.Services,
		generator:     cfg.Generator,
		gate:          cfg.Gate,
		recorder:      cfg.Recorder,
		recordTimeout: cfg.RecordTimeout,
		logger:        cfg.Logger,
	}
}

// Resolve answers q. The history write is started in the background once the
// reply is final and never affects the result.
func (r *Resolver) Resolve(ctx context.Context, q Query) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("resolving query: panic: %v", p)
		}
	}()

	l := lang.Detect(q.Language, q.Message)
	res, err = r.resolve(ctx, q, l)
	if err != nil {
		return Result{}, err
	}

	r.logger.Info("query resolved",
		zap.String("source", res.Source),
		zap.String("language", string(l)),
		zap.String("service_id", res.ServiceID),
	)
	metrics.Resolutions.WithLabelValues(res.Source, string(l)).Inc()
	r.record(ctx, q, res)
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, q Query, l lang.Language) (Result, error) {
	normalized := lang.Normalize(q.Message)

	if ev := r.lifeEvents.Match(normalized); ev != nil {
		return Result{
			Reply:     format.LifeEvent(ev, l),
			Source:    SourceLifeEvent,
			Language:  l,
			LifeEvent: ev,
		}, nil
	}

	rec, err := r.services.Match(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("matching service: %w", err)
	}
	if rec != nil {
		return Result{
			Reply:     format.Service(rec, l),
			Source:    SourceCatalog,
			Language:  l,
			ServiceID: rec.ID,
			Service:   rec,
		}, nil
	}

	gen := r.generator.Generate(ctx, generate.Request{
		Message:  q.Message,
		Language: l,
		Location: q.Location,
	})
	return Result{
		Reply:    r.gate.Finalize(gen.Text, l),
		Source:   gen.Source,
		Language: l,
	}, nil
}

func (r *Resolver) record(ctx context.Context, q Query, res Result) {
	if r.recorder == nil {
		return
	}
	entry := history.Entry{
		UserID:   q.UserID,
		Message:  q.Message,
		Language: res.Language,
		Location: q.Location,
		Reply:    res.Reply,
		Source:   res.Source,
	}

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		defer func() {
			if p := recover(); p != nil {
				r.logger.Warn("history write panicked", zap.Any("panic", p))
				metrics.HistoryWriteFailures.Inc()
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.recordTimeout)
		defer cancel()
		if err := r.recorder.Append(ctx, entry); err != nil {
			r.logger.Warn("history write failed", zap.String("user_id", entry.UserID), zap.Error(err))
			metrics.HistoryWriteFailures.Inc()
		}
	}()
}

// Wait blocks until background history writes have finished.
func (r *Resolver) Wait() {
	r.pending.Wait()
}
