package parser

import (
	"regexp"
	"strings"

	"github.com/lamim/cardforge/internal/util"
	"github.com/lamim/cardforge/pkg/models"
)

// parseStrict treats the whole response as a JSON array matching the
// contract exactly.
func (p *Parser) parseStrict(raw string) []models.CardRecord {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return nil
	}
	return p.decodeArray(trimmed)
}

// parseBounded strips code fences and prose and re-runs the strict decode on
// the substring between the first [ and its matching ].
func (p *Parser) parseBounded(raw string) []models.CardRecord {
	extracted := util.ExtractJSON(raw)
	if !strings.HasPrefix(extracted, "[") {
		return nil
	}
	return p.decodeArray(extracted)
}

// parseRepaired applies syntactic repair (trailing commas, missing commas
// between adjacent objects, unescaped newlines) to the bounded substring
// before decoding.
func (p *Parser) parseRepaired(raw string) []models.CardRecord {
	repaired := util.RepairJSON(util.ExtractJSON(raw))
	if !strings.HasPrefix(repaired, "[") {
		return nil
	}
	return p.decodeArray(repaired)
}

// parseObjectScan hunts for individual card-shaped objects anywhere in the
// response, independent of overall array validity.
func (p *Parser) parseObjectScan(raw string) []models.CardRecord {
	var records []models.CardRecord

	i := 0
	for i < len(raw) {
		offset := strings.IndexByte(raw[i:], '{')
		if offset < 0 {
			break
		}
		start := i + offset

		end := util.MatchingBracket(raw, start, '{', '}')
		if end < 0 {
			i = start + 1
			continue
		}

		fragment := util.RepairJSON(raw[start : end+1])
		if strings.Contains(fragment, `"question"`) {
			if record, ok := p.decodeObject([]byte(fragment), len(records)); ok {
				records = append(records, record)
				i = end + 1
				continue
			}
		}

		i = start + 1
	}

	return records
}

var (
	// "Q: ...? A: ..." on a single line.
	inlineQARegex = regexp.MustCompile(`(?i)\bQ(?:uestion)?\s*:\s*(.+?)\s+A(?:nswer)?\s*:\s*(.+)`)
	// "Q: ..." / "A: ..." on separate lines.
	questionLineRegex = regexp.MustCompile(`(?i)^\s*Q(?:uestion)?\s*:\s*(.+)$`)
	answerLineRegex   = regexp.MustCompile(`(?i)^\s*A(?:nswer)?\s*:\s*(.+)$`)
	// "1. question - answer" numbered pairs.
	numberedRegex = regexp.MustCompile(`^\s*\d+[.)]\s+(.+?)\s+[-–]\s+(.+)$`)
)

// parsePatterns is the last resort: synthesize qa records from loose
// question/answer prose patterns.
func (p *Parser) parsePatterns(raw string) []models.CardRecord {
	var records []models.CardRecord
	pendingQuestion := ""

	emit := func(question, answer string) {
		if record, ok := p.toRecord(question, answer, string(models.CardTypeQA)); ok {
			records = append(records, record)
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if m := inlineQARegex.FindStringSubmatch(line); m != nil {
			emit(m[1], m[2])
			pendingQuestion = ""
			continue
		}
		if m := questionLineRegex.FindStringSubmatch(line); m != nil {
			pendingQuestion = m[1]
			continue
		}
		if m := answerLineRegex.FindStringSubmatch(line); m != nil {
			if pendingQuestion != "" {
				emit(pendingQuestion, m[1])
				pendingQuestion = ""
			}
			continue
		}
		if m := numberedRegex.FindStringSubmatch(line); m != nil {
			emit(m[1], m[2])
		}
	}

	return records
}
