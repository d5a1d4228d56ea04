// Package prompt renders the instruction sent to the generation service for
// one chunk. It owns the output-format contract and the supported language
// and content-type tables, so the parser's expectations and the composer's
// instructions cannot drift apart.
package prompt

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lamim/cardforge/internal/util"
	"github.com/lamim/cardforge/pkg/models"
)

var (
	// ErrUnsupportedLanguage is returned for a language tag outside the
	// supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrUnsupportedContentType is returned for an unknown content-type tag.
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

// Composer builds generation prompts. It holds no mutable state; Compose is
// a pure function of its inputs.
type Composer struct {
	languages    map[models.Language]string
	contentTypes map[models.ContentType]string
}

// NewComposer creates a composer with the built-in language and
// content-type tables.
func NewComposer() *Composer {
	return &Composer{
		languages:    defaultLanguageInstructions(),
		contentTypes: defaultContentTypeIntros(),
	}
}

// Compose renders the complete instruction string for one chunk. Callers
// are expected to have validated the tags; an unknown tag still fails
// cleanly with ErrUnsupportedLanguage or ErrUnsupportedContentType.
func (c *Composer) Compose(chunk models.TextChunk, language models.Language, contentType models.ContentType) (string, error) {
	languageInstruction, ok := c.languages[language]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	styleIntro, ok := c.contentTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}

	return util.RenderTemplate(cardGenerationTemplate, map[string]interface{}{
		"StyleIntro":          styleIntro,
		"LanguageInstruction": languageInstruction,
		"ClozeExample":        "{{c1::hidden text}}",
		"ChunkText":           chunk.Content,
	})
}

// SupportsLanguage reports whether a language tag is in the supported set.
func (c *Composer) SupportsLanguage(language models.Language) bool {
	_, ok := c.languages[language]
	return ok
}

// SupportsContentType reports whether a content-type tag is known.
func (c *Composer) SupportsContentType(contentType models.ContentType) bool {
	_, ok := c.contentTypes[contentType]
	return ok
}

// SupportedLanguages returns the supported language tags, sorted.
func (c *Composer) SupportedLanguages() []models.Language {
	languages := make([]models.Language, 0, len(c.languages))
	for language := range c.languages {
		languages = append(languages, language)
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i] < languages[j] })
	return languages
}

// SupportedContentTypes returns the known content-type tags, sorted.
func (c *Composer) SupportedContentTypes() []models.ContentType {
	types := make([]models.ContentType, 0, len(c.contentTypes))
	for contentType := range c.contentTypes {
		types = append(types, contentType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
