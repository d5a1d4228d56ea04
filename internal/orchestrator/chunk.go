package orchestrator

import (
	"context"
	"log/slog"

	"github.com/lamim/cardforge/pkg/models"
)

// chunkOutcome is the terminal result of one chunk's attempt loop.
type chunkOutcome struct {
	cards              []models.CardRecord
	summary            models.ChunkSummary
	validationFailures int
	cancelled          bool
}

// processChunk runs the per-chunk attempt loop:
//
//	generate -> parse -> validate -> accept
//	                              -> retry in the requested language
//	                              -> fall back to the default language
//	                              -> exhausted
//
// A transport failure ends the chunk immediately with zero cards; the
// client already retried transient errors internally, so another language
// attempt would just repeat the same failure.
func (o *Orchestrator) processChunk(ctx context.Context, chunk models.TextChunk, language models.Language, contentType models.ContentType) chunkOutcome {
	log := o.logger.With("chunk_index", chunk.Index)
	outcome := chunkOutcome{summary: models.ChunkSummary{ChunkIndex: chunk.Index}}

	maxAttempts := 1 + o.cfg.Pipeline.MaxValidationRetries
	var lastParsed []models.CardRecord

	for attemptNumber := 1; attemptNumber <= maxAttempts; attemptNumber++ {
		outcome.summary.Attempts++

		attempt, err := o.runAttempt(ctx, log, chunk, language, contentType, attemptNumber)
		if err != nil {
			if ctx.Err() != nil {
				outcome.cancelled = true
				return outcome
			}
			log.Error("Chunk generation failed", "attempt", attemptNumber, "error", err)
			outcome.summary.TransportFailed = true
			outcome.summary.Error = err.Error()
			o.collector.RecordAttempt("transport_error")
			return outcome
		}

		lastParsed = attempt.Parsed

		if attempt.Validation.Passed {
			outcome.cards = attempt.Parsed
			outcome.summary.Cards = len(attempt.Parsed)
			o.collector.RecordAttempt("accepted")
			return outcome
		}

		outcome.validationFailures++
		outcome.summary.ValidationFailed = true
		o.collector.RecordAttempt("validation_failed")
		log.Warn("Language validation failed",
			"attempt", attemptNumber,
			"language", language,
			"success_rate", attempt.Validation.SuccessRate,
			"threshold_checks", attempt.Validation.ChecksPerformed,
			"cards", len(attempt.Parsed))
		// Generation is probabilistic; the same prompt may validate on
		// the next attempt.
	}

	if language != models.DefaultLanguage {
		// One extra attempt in the default language, accepted without a
		// further language check: some output beats none.
		outcome.summary.Attempts++
		outcome.summary.FallbackUsed = true
		o.collector.RecordAttempt("fallback")
		log.Info("Falling back to default language",
			"requested_language", language,
			"fallback_language", models.DefaultLanguage)

		attempt, err := o.runAttempt(ctx, log, chunk, models.DefaultLanguage, contentType, maxAttempts+1)
		if err != nil {
			if ctx.Err() != nil {
				outcome.cancelled = true
				return outcome
			}
			log.Error("Fallback generation failed", "error", err)
			outcome.summary.TransportFailed = true
			outcome.summary.Error = err.Error()
			o.collector.RecordAttempt("transport_error")
			return outcome
		}
		outcome.cards = attempt.Parsed
		outcome.summary.Cards = len(attempt.Parsed)
	} else {
		// Already generating in the default language, so there is no
		// fallback left. Keep the last attempt's cards rather than
		// discarding parsed output over a soft heuristic.
		outcome.cards = lastParsed
		outcome.summary.Cards = len(lastParsed)
	}

	if len(outcome.cards) == 0 {
		o.collector.RecordAttempt("exhausted")
		log.Warn("Chunk exhausted all attempts without usable cards",
			"attempts", outcome.summary.Attempts)
	}
	return outcome
}

// runAttempt performs one compose/generate/parse/validate round trip.
func (o *Orchestrator) runAttempt(ctx context.Context, log *slog.Logger, chunk models.TextChunk, language models.Language, contentType models.ContentType, attemptNumber int) (models.GenerationAttempt, error) {
	promptText, err := o.composer.Compose(chunk, language, contentType)
	if err != nil {
		return models.GenerationAttempt{}, err
	}

	raw, err := o.generator.Generate(ctx, promptText)
	if err != nil {
		return models.GenerationAttempt{}, err
	}

	parsed := o.parser.Parse(raw)
	validation := o.validator.Validate(parsed, language)

	log.Debug("Generation attempt complete",
		"attempt", attemptNumber,
		"language", language,
		"response_length", len(raw),
		"cards", len(parsed),
		"validation_method", validation.Method,
		"validation_passed", validation.Passed)

	return models.GenerationAttempt{
		ChunkIndex:    chunk.Index,
		AttemptNumber: attemptNumber,
		Language:      language,
		RawResponse:   raw,
		Parsed:        parsed,
		Validation:    validation,
	}, nil
}
