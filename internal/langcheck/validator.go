// Package langcheck heuristically scores whether card records are written
// in the expected language. The check is intentionally low-confidence: it
// exists to catch a generation service answering in the wrong language
// entirely, not to certify fluency. Languages without a marker set pass by
// default — unknown never blocks progress.
package langcheck

import (
	"github.com/lamim/cardforge/pkg/models"
)

const (
	// DefaultThreshold is the minimum pattern-match ratio to accept text as
	// conforming to the requested language. A heuristic default inherited
	// from field calibration, not a guaranteed-correct constant.
	DefaultThreshold = 0.3

	// DefaultSampleSize bounds how many records one validation pass checks.
	DefaultSampleSize = 20
)

// Validator checks card records against per-language marker patterns. It
// holds no mutable state and is safe for concurrent use.
type Validator struct {
	threshold  float64
	sampleSize int
}

// New creates a validator. Zero arguments fall back to the defaults.
func New(threshold float64, sampleSize int) *Validator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Validator{threshold: threshold, sampleSize: sampleSize}
}

// HasPatterns reports whether a marker set exists for the language.
func HasPatterns(language models.Language) bool {
	_, ok := markerPatterns[language]
	return ok
}

// Validate scores a bounded sample of records against the language's marker
// patterns. Empty input and languages without patterns both pass.
func (v *Validator) Validate(records []models.CardRecord, language models.Language) models.ValidationResult {
	if len(records) == 0 {
		return models.ValidationResult{
			Passed: true,
			Method: models.ValidationEmptyInput,
		}
	}

	patterns, ok := markerPatterns[language]
	if !ok {
		return models.ValidationResult{
			Passed: true,
			Method: models.ValidationNoPatterns,
		}
	}

	sample := records
	if len(sample) > v.sampleSize {
		sample = sample[:v.sampleSize]
	}

	matches := 0
	checks := 0
	for _, record := range sample {
		for _, field := range []string{record.Question, record.Answer} {
			checks++
			for _, pattern := range patterns {
				if pattern.MatchString(field) {
					matches++
					break
				}
			}
		}
	}

	rate := float64(matches) / float64(checks)

	return models.ValidationResult{
		MatchesFound:    matches,
		ChecksPerformed: checks,
		SampleSize:      len(sample),
		SuccessRate:     rate,
		Passed:          rate >= v.threshold,
		Method:          models.ValidationPatternMatch,
	}
}
