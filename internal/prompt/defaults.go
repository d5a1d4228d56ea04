package prompt

import "github.com/lamim/cardforge/pkg/models"

// cardGenerationTemplate is the single prompt shape sent to the generation
// service. The JSON contract stated here is what internal/parser's strict
// strategy expects back.
const cardGenerationTemplate = `You are an expert flashcard author. {{.StyleIntro}}

Create flashcards from the source text below. {{.LanguageInstruction}}

Return ONLY a valid JSON array of objects (no markdown fences, no prose before or after). Every object must have exactly these three fields:

[{"question": "...", "answer": "...", "card_type": "qa"}]

Rules:
- card_type must be "qa" or "cloze"
- cloze cards mark the hidden span as {{.ClozeExample}}
- question and answer must both be non-empty
- cover the important facts of the source text, one fact per card

SOURCE TEXT:
{{.ChunkText}}`

func defaultLanguageInstructions() map[models.Language]string {
	return map[models.Language]string{
		models.LanguageEnglish:    "Write every question and every answer in English.",
		models.LanguageSpanish:    "Write every question and every answer in Spanish (español). Do not use English.",
		models.LanguageFrench:     "Write every question and every answer in French (français). Do not use English.",
		models.LanguageGerman:     "Write every question and every answer in German (Deutsch). Do not use English.",
		models.LanguageItalian:    "Write every question and every answer in Italian (italiano). Do not use English.",
		models.LanguagePortuguese: "Write every question and every answer in Portuguese (português). Do not use English.",
		models.LanguageJapanese:   "Write every question and every answer in Japanese (日本語). Do not use English.",
	}
}

func defaultContentTypeIntros() map[models.ContentType]string {
	return map[models.ContentType]string{
		models.ContentTypeAcademic:  "The source text is academic material; favor precise definitions, theorems, and cited claims.",
		models.ContentTypeTechnical: "The source text is technical documentation; favor commands, APIs, parameters, and exact behavior.",
		models.ContentTypeGeneral:   "The source text is general prose; favor the key facts a careful reader should retain.",
	}
}
