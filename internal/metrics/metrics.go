// Package metrics exposes Prometheus counters for the resolution pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cascade names used as the cascade label.
const (
	CascadeText = "text"
	CascadeSTT  = "stt"
	CascadeTTS  = "tts"
)

var (
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_resolutions_total",
			Help: "Answered queries by the source that produced the reply",
		},
		[]string{"source", "language"},
	)

	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_provider_attempts_total",
			Help: "Provider calls made by each cascade, by outcome",
		},
		[]string{"cascade", "provider", "outcome"},
	)

	QualityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_quality_rejections_total",
			Help: "Generated replies replaced by the safe template",
		},
		[]string{"language"},
	)

	HistoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "navigator_history_write_failures_total",
			Help: "Chat history entries that could not be stored",
		},
	)
)

// ObserveAttempt records one provider call.
func ObserveAttempt(cascade, provider string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ProviderAttempts.WithLabelValues(cascade, provider, outcome).Inc()
}
