// Package chunker splits a text body into bounded-size chunks along natural
// boundaries. The bound is soft: paragraphs are packed greedily, oversized
// paragraphs fall back to sentence packing, and a single sentence longer than
// the bound is emitted whole rather than truncated mid-content.
package chunker

import (
	"errors"
	"strings"

	"github.com/lamim/cardforge/pkg/models"
)

const paragraphSeparator = "\n\n"

// ErrInvalidMaxChars is returned when the chunk bound is not positive.
var ErrInvalidMaxChars = errors.New("max chunk chars must be positive")

// Split divides text into ordered, non-empty chunks of at most maxChars
// characters each, except for chunks holding a single atomic sentence longer
// than the bound. Chunk indices follow original text order.
func Split(text string, maxChars int) ([]models.TextChunk, error) {
	if maxChars <= 0 {
		return nil, ErrInvalidMaxChars
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if len(text) <= maxChars {
		return []models.TextChunk{{Index: 0, Content: text}}, nil
	}

	var contents []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			contents = append(contents, current.String())
			current.Reset()
		}
	}

	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		if len(paragraph) > maxChars {
			// Oversized paragraph: flush what we have, then pack sentences.
			flush()
			contents = append(contents, packSentences(paragraph, maxChars)...)
			continue
		}

		if current.Len() == 0 {
			current.WriteString(paragraph)
			continue
		}

		if current.Len()+len(paragraphSeparator)+len(paragraph) > maxChars {
			flush()
			current.WriteString(paragraph)
			continue
		}

		current.WriteString(paragraphSeparator)
		current.WriteString(paragraph)
	}
	flush()

	chunks := make([]models.TextChunk, 0, len(contents))
	for _, content := range contents {
		if strings.TrimSpace(content) == "" {
			continue
		}
		chunks = append(chunks, models.TextChunk{Index: len(chunks), Content: content})
	}

	return chunks, nil
}

// packSentences greedily packs the sentences of a single paragraph into
// bounded pieces. Sentences keep their trailing whitespace, so concatenating
// the pieces reproduces the paragraph exactly.
func packSentences(paragraph string, maxChars int) []string {
	sentences := splitSentences(paragraph)

	var pieces []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) > maxChars {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		// A lone sentence over the bound goes out whole; truncating it
		// would corrupt the content it carries.
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	return pieces
}

// splitSentences cuts a paragraph after terminal punctuation. Each sentence
// includes the punctuation and any whitespace that follows it, preserving
// the paragraph byte-for-byte across the split.
func splitSentences(paragraph string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(paragraph); i++ {
		ch := paragraph[i]
		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}
		// Consume any run of closing punctuation and whitespace.
		end := i + 1
		for end < len(paragraph) && (paragraph[end] == '.' || paragraph[end] == '!' || paragraph[end] == '?') {
			end++
		}
		if end == len(paragraph) || isSpace(paragraph[end]) {
			for end < len(paragraph) && isSpace(paragraph[end]) {
				end++
			}
			sentences = append(sentences, paragraph[start:end])
			start = end
			i = end - 1
		}
	}

	if start < len(paragraph) {
		sentences = append(sentences, paragraph[start:])
	}

	return sentences
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
