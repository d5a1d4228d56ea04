// Package orchestrator drives the card generation pipeline end to end:
// chunk the source text, generate cards per chunk with bounded language
// retries and an English fallback, and aggregate results in source order.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/lamim/cardforge/internal/chunker"
	"github.com/lamim/cardforge/internal/config"
	"github.com/lamim/cardforge/internal/langcheck"
	"github.com/lamim/cardforge/internal/metrics"
	"github.com/lamim/cardforge/internal/parser"
	"github.com/lamim/cardforge/internal/prompt"
	"github.com/lamim/cardforge/pkg/models"
)

// Generator produces one raw model response for one prompt. Transport
// retries and rate limiting live behind this interface, not above it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Orchestrator coordinates the chunk pipeline. Chunks are processed
// sequentially with a configurable delay between requests.
type Orchestrator struct {
	cfg       *config.Config
	generator Generator
	composer  *prompt.Composer
	parser    *parser.Parser
	validator *langcheck.Validator
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates an orchestrator. The collector may be nil to disable
// instrumentation.
func New(cfg *config.Config, generator Generator, collector *metrics.Collector, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		generator: generator,
		composer:  prompt.NewComposer(),
		parser:    parser.New(logger),
		validator: langcheck.New(cfg.Pipeline.ValidationThreshold, cfg.Pipeline.ValidationSampleSize),
		collector: collector,
		logger:    logger,
	}
}

// GenerateCards runs the full pipeline over one source text. Unknown
// language or content-type tags fail here, before any network activity.
// On cancellation the cards produced so far are returned together with
// statistics and the context error.
func (o *Orchestrator) GenerateCards(ctx context.Context, text string) ([]models.CardRecord, *models.GenerationStatistics, error) {
	language := models.Language(o.cfg.Pipeline.Language)
	contentType := models.ContentType(o.cfg.Pipeline.ContentType)

	if !o.composer.SupportsLanguage(language) {
		return nil, nil, fmt.Errorf("%w: %q (supported: %v)",
			prompt.ErrUnsupportedLanguage, language, o.composer.SupportedLanguages())
	}
	if !o.composer.SupportsContentType(contentType) {
		return nil, nil, fmt.Errorf("%w: %q (supported: %v)",
			prompt.ErrUnsupportedContentType, contentType, o.composer.SupportedContentTypes())
	}

	chunks, err := chunker.Split(text, o.cfg.Pipeline.MaxChunkChars)
	if err != nil {
		return nil, nil, fmt.Errorf("chunking source text: %w", err)
	}

	stats := &models.GenerationStatistics{
		RunID:       uuid.NewString(),
		TotalChunks: len(chunks),
		StartTime:   time.Now(),
	}

	if !langcheck.HasPatterns(language) {
		o.logger.Info("No validation patterns for language, language checks will pass by default",
			"language", language)
	}

	o.logger.Info("Starting card generation",
		"run_id", stats.RunID,
		"chunks", len(chunks),
		"language", language,
		"content_type", contentType,
		"max_validation_retries", o.cfg.Pipeline.MaxValidationRetries)

	var bar *progressbar.ProgressBar
	if o.cfg.Pipeline.ShowProgress && len(chunks) > 0 {
		bar = progressbar.Default(int64(len(chunks)), "Generating cards")
	}

	perChunk := make([][]models.CardRecord, len(chunks))
	cancelled := false

	for i, chunk := range chunks {
		if i > 0 {
			if !o.waitBetweenChunks(ctx) {
				cancelled = true
				break
			}
		}
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		start := time.Now()
		outcome := o.processChunk(ctx, chunk, language, contentType)
		o.collector.RecordChunk(time.Since(start))

		if outcome.cancelled {
			cancelled = true
			break
		}

		perChunk[chunk.Index] = outcome.cards
		o.recordChunk(stats, outcome)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	// Aggregation order is chunk index, so the final deck follows the
	// source document regardless of how processing interleaved.
	var cards []models.CardRecord
	for _, records := range perChunk {
		cards = append(cards, records...)
	}

	stats.Cancelled = cancelled
	stats.TotalCards = len(cards)
	stats.EndTime = time.Now()
	stats.TotalDuration = stats.EndTime.Sub(stats.StartTime)
	o.collector.AddCards(len(cards))

	o.logSummary(stats)

	if cancelled {
		// Partial results still have value; the caller decides whether
		// to keep them.
		return cards, stats, ctx.Err()
	}
	return cards, stats, nil
}

// waitBetweenChunks sleeps for the configured inter-chunk delay. It
// returns false if the context was cancelled while waiting.
func (o *Orchestrator) waitBetweenChunks(ctx context.Context) bool {
	delay := o.cfg.Pipeline.InterChunkDelay()
	if delay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

// recordChunk folds one finished chunk into the run statistics. A chunk
// counts as successful only when it produced at least one card without a
// transport failure.
func (o *Orchestrator) recordChunk(stats *models.GenerationStatistics, outcome chunkOutcome) {
	stats.ValidationFailures += outcome.validationFailures
	if outcome.summary.FallbackUsed {
		stats.FallbackUsedCount++
	}
	if !outcome.summary.TransportFailed && outcome.summary.Cards > 0 {
		stats.SuccessfulChunks++
	} else {
		stats.FailedChunks++
	}
	stats.PerChunk = append(stats.PerChunk, outcome.summary)
}

func (o *Orchestrator) logSummary(stats *models.GenerationStatistics) {
	o.logger.Info("Card generation complete",
		"run_id", stats.RunID,
		"total_chunks", stats.TotalChunks,
		"successful_chunks", stats.SuccessfulChunks,
		"failed_chunks", stats.FailedChunks,
		"total_cards", stats.TotalCards,
		"validation_failures", stats.ValidationFailures,
		"fallback_used_count", stats.FallbackUsedCount,
		"cancelled", stats.Cancelled,
		"duration", stats.TotalDuration.Round(time.Millisecond).String())

	for _, summary := range stats.PerChunk {
		if summary.TransportFailed {
			o.logger.Warn("Chunk failed at transport layer",
				"chunk_index", summary.ChunkIndex,
				"attempts", summary.Attempts,
				"error", summary.Error)
		} else if summary.Cards == 0 {
			o.logger.Warn("Chunk produced no cards",
				"chunk_index", summary.ChunkIndex,
				"attempts", summary.Attempts,
				"fallback_used", summary.FallbackUsed)
		}
	}
}
