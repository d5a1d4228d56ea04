package util

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean array",
			input:    `[{"question": "q", "answer": "a", "card_type": "qa"}]`,
			expected: `[{"question": "q", "answer": "a", "card_type": "qa"}]`,
		},
		{
			name:     "array in code fence",
			input:    "```json\n[{\"question\": \"q\"}]\n```",
			expected: `[{"question": "q"}]`,
		},
		{
			name:     "array in bare code fence",
			input:    "```\n[1, 2]\n```",
			expected: `[1, 2]`,
		},
		{
			name:     "prose before and after",
			input:    `Here are your cards: [{"question": "q"}] Hope this helps!`,
			expected: `[{"question": "q"}]`,
		},
		{
			name:     "array preferred over earlier object",
			input:    `{"note": "x"} [{"question": "q"}]`,
			expected: `[{"question": "q"}]`,
		},
		{
			name:     "single object when no array",
			input:    `Result: {"question": "q", "answer": "a"}`,
			expected: `{"question": "q", "answer": "a"}`,
		},
		{
			name:     "brackets inside strings ignored",
			input:    `[{"question": "what is [x]?", "answer": "a"}]`,
			expected: `[{"question": "what is [x]?", "answer": "a"}]`,
		},
		{
			name:     "truncated array gets closed",
			input:    `[{"question": "q", "answer": "a"}, {"question": "q2",`,
			expected: `[{"question": "q", "answer": "a"}, {"question": "q2"}]`,
		},
		{
			name:     "truncated mid-string gets closed",
			input:    `[{"question": "what is`,
			expected: `[{"question": "what is"}]`,
		},
		{
			name:     "no JSON at all",
			input:    "just some prose",
			expected: "just some prose",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractJSON(tt.input)
			if result != tt.expected {
				t.Errorf("ExtractJSON() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONTruncatedIsValid(t *testing.T) {
	// Truncation closure must always yield parseable JSON.
	inputs := []string{
		`[{"question": "a", "answer": "b", "card_type": "qa"}, {"question": "c"`,
		`[{"question": "a"},`,
		`[{"nested": {"deep": ["x"`,
	}
	for _, input := range inputs {
		result := ExtractJSON(input)
		if !json.Valid([]byte(result)) {
			t.Errorf("ExtractJSON(%q) = %q is not valid JSON", input, result)
		}
	}
}

func TestMatchingBracket(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		start    int
		open     byte
		close    byte
		expected int
	}{
		{"simple array", `[1, 2]`, 0, '[', ']', 5},
		{"nested", `[[1], [2]]`, 0, '[', ']', 9},
		{"inner", `[[1], [2]]`, 1, '[', ']', 3},
		{"closer inside string skipped", `["]"]`, 0, '[', ']', 4},
		{"escaped quote inside string", `["\"]"]`, 0, '[', ']', 6},
		{"unbalanced", `[1, 2`, 0, '[', ']', -1},
		{"object", `{"a": {"b": 1}}`, 0, '{', '}', 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MatchingBracket(tt.input, tt.start, tt.open, tt.close)
			if result != tt.expected {
				t.Errorf("MatchingBracket() = %d, want %d", result, tt.expected)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "trailing comma in array",
			input: `[{"a": "1"},]`,
		},
		{
			name:  "trailing comma in object",
			input: `{"a": "1",}`,
		},
		{
			name:  "duplicate commas",
			input: `["a",, "b"]`,
		},
		{
			name:  "missing comma between objects",
			input: `[{"a": "1"} {"b": "2"}]`,
		},
		{
			name:  "missing comma between strings",
			input: `["a" "b"]`,
		},
		{
			name:  "literal newline in string",
			input: "[{\"a\": \"line1\nline2\"}]",
		},
		{
			name:  "already valid",
			input: `[{"a": "1"}, {"b": "2"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RepairJSON(tt.input)
			if !json.Valid([]byte(result)) {
				t.Errorf("RepairJSON(%q) = %q is not valid JSON", tt.input, result)
			}
		})
	}
}

func TestRepairJSONPreservesStrings(t *testing.T) {
	input := `[{"q": "a, b,, c"}]`
	result := RepairJSON(input)
	if result != input {
		t.Errorf("RepairJSON modified string contents: %q", result)
	}
}

func TestSanitizeJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "newline in string escaped",
			input:    "{\"a\": \"x\ny\"}",
			expected: `{"a": "x\ny"}`,
		},
		{
			name:     "crlf collapses to one escape",
			input:    "{\"a\": \"x\r\ny\"}",
			expected: `{"a": "x\ny"}`,
		},
		{
			name:     "newline outside string kept",
			input:    "{\n\"a\": \"x\"\n}",
			expected: "{\n\"a\": \"x\"\n}",
		},
		{
			name:     "already escaped untouched",
			input:    `{"a": "x\ny"}`,
			expected: `{"a": "x\ny"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeJSON(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeJSON() = %q, want %q", result, tt.expected)
			}
		})
	}
}
