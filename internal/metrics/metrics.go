// Package metrics exposes Prometheus instrumentation for the card
// generation pipeline. All Collector methods are safe on a nil receiver so
// instrumentation stays optional for library users.
package metrics

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardforge_api_request_duration_seconds",
			Help:    "Generation API request duration in seconds by model",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~100s
		},
		[]string{"model", "status"},
	)

	chunkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardforge_chunk_duration_seconds",
			Help:    "End-to-end processing duration per chunk",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~500s
		},
	)

	generationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardforge_generation_attempts_total",
			Help: "Generation attempts by outcome",
		},
		[]string{"outcome"}, // accepted, validation_failed, fallback, transport_error, exhausted
	)

	cardsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardforge_cards_generated_total",
			Help: "Total number of accepted card records",
		},
	)
)

// Collector provides convenience methods for recording pipeline metrics.
type Collector struct {
	logger *slog.Logger
}

// NewCollector creates a new metrics collector.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger}
}

// RecordAPIRequest records an API request duration.
func (c *Collector) RecordAPIRequest(model string, duration time.Duration, success bool) {
	if c == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	apiRequestDuration.WithLabelValues(model, status).Observe(duration.Seconds())
}

// RecordChunk records end-to-end processing duration for one chunk.
func (c *Collector) RecordChunk(duration time.Duration) {
	if c == nil {
		return
	}
	chunkDuration.Observe(duration.Seconds())
}

// RecordAttempt increments the attempt counter for an outcome.
func (c *Collector) RecordAttempt(outcome string) {
	if c == nil {
		return
	}
	generationAttempts.WithLabelValues(outcome).Inc()
}

// AddCards adds accepted card records to the running total.
func (c *Collector) AddCards(n int) {
	if c == nil {
		return
	}
	cardsGenerated.Add(float64(n))
}
