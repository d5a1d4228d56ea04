package langcheck

import (
	"regexp"

	"github.com/lamim/cardforge/pkg/models"
)

// markerPatterns maps each supported language to cheap markers: high-
// frequency function words, diacritics, and script ranges. A field counts
// as matching when any one pattern hits.
var markerPatterns = map[models.Language][]*regexp.Regexp{
	models.LanguageEnglish: {
		regexp.MustCompile(`(?i)\b(the|and|of|to|in|is|that|it|for|with|was|what|which)\b`),
	},
	models.LanguageSpanish: {
		regexp.MustCompile(`(?i)\b(el|la|los|las|de|que|y|en|un|una|es|por|con|para|cuál|qué)\b`),
		regexp.MustCompile(`[áéíóúñü¿¡]`),
	},
	models.LanguageFrench: {
		regexp.MustCompile(`(?i)\b(le|la|les|des|de|du|et|est|une|dans|que|pour|quelle|quel)\b`),
		regexp.MustCompile(`[àâçéèêëîïôûù]`),
	},
	models.LanguageGerman: {
		regexp.MustCompile(`(?i)\b(der|die|das|und|ist|ein|eine|nicht|mit|von|zu|was|welche)\b`),
		regexp.MustCompile(`[äöüß]`),
	},
	models.LanguageItalian: {
		regexp.MustCompile(`(?i)\b(il|lo|la|gli|le|di|che|un|una|per|non|con|qual|cosa)\b`),
		regexp.MustCompile(`[àèéìòù]`),
	},
	models.LanguagePortuguese: {
		regexp.MustCompile(`(?i)\b(os|as|de|do|da|que|um|uma|é|não|para|com|qual|quais)\b`),
		regexp.MustCompile(`[ãõçáéíóúâêô]`),
	},
	models.LanguageJapanese: {
		regexp.MustCompile(`[\p{Hiragana}\p{Katakana}]`),
		regexp.MustCompile(`\p{Han}`),
	},
}
