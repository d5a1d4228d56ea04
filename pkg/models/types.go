package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Language identifies the target output language for generated cards.
type Language string

const (
	LanguageEnglish    Language = "english"
	LanguageSpanish    Language = "spanish"
	LanguageFrench     Language = "french"
	LanguageGerman     Language = "german"
	LanguageItalian    Language = "italian"
	LanguagePortuguese Language = "portuguese"
	LanguageJapanese   Language = "japanese"

	// DefaultLanguage is the fallback language substituted after repeated
	// validation failure, to guarantee some output rather than none.
	DefaultLanguage = LanguageEnglish
)

// ContentType is a coarse style tag influencing prompt wording.
type ContentType string

const (
	ContentTypeAcademic  ContentType = "academic"
	ContentTypeTechnical ContentType = "technical"
	ContentTypeGeneral   ContentType = "general"
)

// CardType classifies a flashcard as plain question/answer or cloze deletion.
type CardType string

const (
	CardTypeQA    CardType = "qa"
	CardTypeCloze CardType = "cloze"
)

// TextChunk is a bounded contiguous slice of the source document. Index
// defines the position of the chunk's cards in the final aggregate output.
type TextChunk struct {
	Index   int
	Content string
}

// CardRecord is a single validated flashcard. Use NewCardRecord to construct;
// a CardRecord obtained from the constructor always has non-empty trimmed
// fields, and cloze cards carry at least one {{cN::...}} marker.
type CardRecord struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	CardType CardType `json:"card_type"`
}

var clozeMarkerRegex = regexp.MustCompile(`\{\{c\d+::[^{}]+\}\}`)

// NewCardRecord builds a CardRecord, enforcing the record invariant.
func NewCardRecord(question, answer string, cardType CardType) (CardRecord, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	if question == "" {
		return CardRecord{}, fmt.Errorf("card question is empty")
	}
	if answer == "" {
		return CardRecord{}, fmt.Errorf("card answer is empty")
	}
	if cardType != CardTypeQA && cardType != CardTypeCloze {
		return CardRecord{}, fmt.Errorf("unknown card type %q", cardType)
	}
	if cardType == CardTypeCloze &&
		!clozeMarkerRegex.MatchString(question) && !clozeMarkerRegex.MatchString(answer) {
		return CardRecord{}, fmt.Errorf("cloze card has no {{cN::...}} marker")
	}

	return CardRecord{Question: question, Answer: answer, CardType: cardType}, nil
}

// HasClozeMarker reports whether s contains a cloze deletion span.
func HasClozeMarker(s string) bool {
	return clozeMarkerRegex.MatchString(s)
}

// ValidationMethod records how a language validation verdict was reached.
type ValidationMethod string

const (
	// ValidationPatternMatch means per-language marker patterns were checked.
	ValidationPatternMatch ValidationMethod = "pattern_match"
	// ValidationNoPatterns means no marker set exists for the language, so
	// validation was skipped, not failed.
	ValidationNoPatterns ValidationMethod = "no_patterns_available"
	// ValidationEmptyInput means there were no records to contradict the
	// language expectation.
	ValidationEmptyInput ValidationMethod = "empty_input"
	// ValidationUnsupportedLanguage means the language tag itself is unknown.
	ValidationUnsupportedLanguage ValidationMethod = "unsupported_language"
)

// ValidationResult is the outcome of a language heuristic check over a set of
// card records.
type ValidationResult struct {
	MatchesFound    int              `json:"matches_found"`
	ChecksPerformed int              `json:"checks_performed"`
	SampleSize      int              `json:"sample_size"`
	SuccessRate     float64          `json:"success_rate"`
	Passed          bool             `json:"passed"`
	Method          ValidationMethod `json:"method"`
}

// GenerationAttempt captures one round trip to the generation service for one
// chunk. Attempts are owned by the orchestrator while a chunk is in flight and
// discarded afterwards except for summary statistics.
type GenerationAttempt struct {
	ChunkIndex    int
	AttemptNumber int
	Language      Language
	RawResponse   string
	Parsed        []CardRecord
	Validation    ValidationResult
}

// ChunkSummary records how a single chunk fared, for end-of-run reporting.
type ChunkSummary struct {
	ChunkIndex       int    `json:"chunk_index"`
	Attempts         int    `json:"attempts"`
	Cards            int    `json:"cards"`
	TransportFailed  bool   `json:"transport_failed,omitempty"`
	ValidationFailed bool   `json:"validation_failed,omitempty"`
	FallbackUsed     bool   `json:"fallback_used,omitempty"`
	Error            string `json:"error,omitempty"`
}

// GenerationStatistics accumulates per-run counters across all chunks.
// Written once per chunk by the orchestrator, read at the end of the run.
type GenerationStatistics struct {
	RunID              string         `json:"run_id"`
	TotalChunks        int            `json:"total_chunks"`
	SuccessfulChunks   int            `json:"successful_chunks"`
	FailedChunks       int            `json:"failed_chunks"`
	ValidationFailures int            `json:"validation_failures"`
	FallbackUsedCount  int            `json:"fallback_used_count"`
	TotalCards         int            `json:"total_cards"`
	Cancelled          bool           `json:"cancelled,omitempty"`
	StartTime          time.Time      `json:"start_time"`
	EndTime            time.Time      `json:"end_time"`
	TotalDuration      time.Duration  `json:"total_duration"`
	PerChunk           []ChunkSummary `json:"per_chunk"`
}
