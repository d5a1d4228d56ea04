// Package parser converts raw generation output into card records. It never
// fails: an ordered cascade of recovery strategies is tried until one yields
// at least one valid record, and an empty result is the worst case. The
// generation service's output is adversarial by unreliability, not intent,
// so every strategy degrades gracefully instead of erroring.
package parser

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/lamim/cardforge/internal/util"
	"github.com/lamim/cardforge/pkg/models"
)

// Parser recovers card records from raw generation responses.
type Parser struct {
	logger     *slog.Logger
	strategies []strategy
}

// strategy is one recovery step in the cascade. Strategies are data, not
// nested handlers, so reordering or adding one is a one-line change.
type strategy struct {
	name string
	fn   func(p *Parser, raw string) []models.CardRecord
}

// New creates a parser with the standard strategy cascade.
func New(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger,
		strategies: []strategy{
			{"strict_json", (*Parser).parseStrict},
			{"bounded_extraction", (*Parser).parseBounded},
			{"syntactic_repair", (*Parser).parseRepaired},
			{"object_scan", (*Parser).parseObjectScan},
			{"pattern_fallback", (*Parser).parsePatterns},
		},
	}
}

// Parse runs the cascade over one raw response. Later strategies are only
// attempted when every earlier one yielded zero usable records.
func (p *Parser) Parse(raw string) []models.CardRecord {
	for _, s := range p.strategies {
		records := s.fn(p, raw)
		if len(records) > 0 {
			p.logger.Debug("parse strategy recovered cards",
				"strategy", s.name,
				"cards", len(records))
			return records
		}
	}

	p.logger.Warn("no parse strategy recovered any cards",
		"response_preview", util.TruncateString(raw, 200))
	return nil
}

// rawCard mirrors the JSON contract the prompt composer asks for.
type rawCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	CardType string `json:"card_type"`
}

// decodeArray unmarshals a JSON array of card objects, keeping every object
// that carries all three contract fields and survives record validation.
func (p *Parser) decodeArray(jsonStr string) []models.CardRecord {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &elements); err != nil {
		return nil
	}

	var records []models.CardRecord
	for i, element := range elements {
		record, ok := p.decodeObject(element, i)
		if ok {
			records = append(records, record)
		}
	}
	return records
}

// decodeObject converts one JSON object into a card record, enforcing field
// presence and the record invariant.
func (p *Parser) decodeObject(data []byte, index int) (models.CardRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.CardRecord{}, false
	}

	for _, key := range []string{"question", "answer", "card_type"} {
		if _, ok := fields[key]; !ok {
			p.logger.Warn("dropping card object missing required field",
				"index", index,
				"field", key)
			return models.CardRecord{}, false
		}
	}

	var card rawCard
	if err := json.Unmarshal(data, &card); err != nil {
		p.logger.Warn("dropping card object with non-string fields",
			"index", index,
			"error", err)
		return models.CardRecord{}, false
	}

	return p.toRecord(card.Question, card.Answer, card.CardType)
}

// toRecord applies card-type coercion and the record invariant.
func (p *Parser) toRecord(question, answer, cardType string) (models.CardRecord, bool) {
	ctype := models.CardType(strings.ToLower(strings.TrimSpace(cardType)))
	if ctype != models.CardTypeQA && ctype != models.CardTypeCloze {
		p.logger.Warn("coercing unknown card type to qa", "card_type", cardType)
		ctype = models.CardTypeQA
	}

	record, err := models.NewCardRecord(question, answer, ctype)
	if err != nil {
		p.logger.Warn("dropping invalid card record", "error", err)
		return models.CardRecord{}, false
	}
	return record, true
}
