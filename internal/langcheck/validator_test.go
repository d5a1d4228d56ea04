package langcheck

import (
	"fmt"
	"testing"

	"github.com/lamim/cardforge/pkg/models"
)

func qa(question, answer string) models.CardRecord {
	return models.CardRecord{Question: question, Answer: answer, CardType: models.CardTypeQA}
}

func TestValidateEmptyInput(t *testing.T) {
	v := New(0, 0)

	result := v.Validate(nil, models.LanguageEnglish)
	if !result.Passed {
		t.Error("empty input must pass")
	}
	if result.Method != models.ValidationEmptyInput {
		t.Errorf("method = %q, want empty_input", result.Method)
	}
}

func TestValidateUnknownLanguagePasses(t *testing.T) {
	v := New(0, 0)

	records := []models.CardRecord{qa("Quid est veritas?", "Nescio.")}
	result := v.Validate(records, models.Language("latin"))

	if !result.Passed {
		t.Error("language without patterns must pass")
	}
	if result.Method != models.ValidationNoPatterns {
		t.Errorf("method = %q, want no_patterns_available", result.Method)
	}
}

func TestValidateEnglishText(t *testing.T) {
	v := New(0, 0)

	records := []models.CardRecord{
		qa("What is the capital of France?", "The capital of France is Paris."),
		qa("Which planet is closest to the sun?", "Mercury is the closest planet."),
	}
	result := v.Validate(records, models.LanguageEnglish)

	if !result.Passed {
		t.Errorf("english text failed english validation: %+v", result)
	}
	if result.Method != models.ValidationPatternMatch {
		t.Errorf("method = %q, want pattern_match", result.Method)
	}
	if result.ChecksPerformed != 4 {
		t.Errorf("checks = %d, want 4 (2 records x 2 fields)", result.ChecksPerformed)
	}
}

func TestValidateFrenchAgainstEnglishFails(t *testing.T) {
	v := New(0, 0)

	records := []models.CardRecord{
		qa("Quelle ville possède une grande tour célèbre?", "Paris possède une grande tour célèbre."),
		qa("Quel fleuve traverse Paris?", "Un fleuve appelé Seine traverse Paris."),
	}
	result := v.Validate(records, models.LanguageEnglish)

	if result.Passed {
		t.Errorf("french text passed english validation: %+v", result)
	}
}

func TestValidateFrenchText(t *testing.T) {
	v := New(0, 0)

	records := []models.CardRecord{
		qa("Quelle est la capitale de la France?", "La capitale de la France est Paris."),
	}
	result := v.Validate(records, models.LanguageFrench)

	if !result.Passed {
		t.Errorf("french text failed french validation: %+v", result)
	}
}

func TestValidateJapaneseScript(t *testing.T) {
	v := New(0, 0)

	records := []models.CardRecord{
		qa("日本の首都はどこですか。", "東京です。"),
	}
	result := v.Validate(records, models.LanguageJapanese)

	if !result.Passed {
		t.Errorf("japanese text failed japanese validation: %+v", result)
	}
}

func TestValidateSampleBound(t *testing.T) {
	v := New(0.3, 5)

	var records []models.CardRecord
	for i := 0; i < 50; i++ {
		records = append(records, qa(fmt.Sprintf("What is item %d?", i), "It is the thing."))
	}
	result := v.Validate(records, models.LanguageEnglish)

	if result.SampleSize != 5 {
		t.Errorf("sample size = %d, want 5", result.SampleSize)
	}
	if result.ChecksPerformed != 10 {
		t.Errorf("checks = %d, want 10", result.ChecksPerformed)
	}
}

func TestValidateThresholdBoundary(t *testing.T) {
	// One english field out of two checks is a 0.5 rate: passes at
	// threshold 0.5, fails just above it.
	records := []models.CardRecord{
		qa("What is the answer to everything?", "42"),
	}

	if result := New(0.5, 0).Validate(records, models.LanguageEnglish); !result.Passed {
		t.Errorf("rate %v at threshold 0.5 should pass", result.SuccessRate)
	}
	if result := New(0.51, 0).Validate(records, models.LanguageEnglish); result.Passed {
		t.Errorf("rate %v at threshold 0.51 should fail", result.SuccessRate)
	}
}

func TestHasPatterns(t *testing.T) {
	if !HasPatterns(models.LanguageEnglish) {
		t.Error("english must have patterns")
	}
	if !HasPatterns(models.LanguageJapanese) {
		t.Error("japanese must have patterns")
	}
	if HasPatterns(models.Language("klingon")) {
		t.Error("klingon must not have patterns")
	}
}
