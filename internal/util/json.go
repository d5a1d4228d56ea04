package util

import (
	"regexp"
	"strings"
)

var codeFenceRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractJSON pulls the JSON payload out of a generation response that may
// wrap it in markdown code fences or surround it with prose. Arrays are
// preferred over objects. A payload truncated mid-stream is closed so that
// the complete prefix survives.
func ExtractJSON(s string) string {
	if m := codeFenceRegex.FindStringSubmatch(s); len(m) > 1 {
		s = strings.TrimSpace(m[1])
	} else {
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "["); start != -1 {
		if end := MatchingBracket(s, start, '[', ']'); end != -1 {
			return s[start : end+1]
		}
		return closeTruncated(s[start:])
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := MatchingBracket(s, start, '{', '}'); end != -1 {
			return s[start : end+1]
		}
		return closeTruncated(s[start:])
	}

	return s
}

// MatchingBracket returns the index of the closer matching the bracket at
// startPos, honoring strings and escape sequences, or -1 if unbalanced.
func MatchingBracket(s string, startPos int, openChar, closeChar byte) int {
	depth := 0
	inString := false
	escaped := false

	for i := startPos; i < len(s); i++ {
		ch := s[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// closeTruncated trims the dangling tail of a cut-off JSON fragment and
// appends whatever closers the fragment is missing, innermost first.
func closeTruncated(s string) string {
	trimmed := strings.TrimRight(s, " \t\r\n,")

	var sb strings.Builder
	sb.WriteString(trimmed)
	if endsInsideString(trimmed) {
		sb.WriteByte('"')
	}

	stack := openBrackets(sb.String())
	for i := len(stack) - 1; i >= 0; i-- {
		switch stack[i] {
		case '[':
			sb.WriteByte(']')
		case '{':
			sb.WriteByte('}')
		}
	}

	return sb.String()
}

// openBrackets returns the stack of brackets still open at the end of s.
func openBrackets(s string) []byte {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	return stack
}

func endsInsideString(s string) bool {
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
		}
	}
	return inString
}

// RepairJSON fixes the structural damage generation services inflict on
// their own output: trailing commas before closers, duplicated commas, and
// missing commas between adjacent values or object boundaries. String
// contents are left untouched.
func RepairJSON(s string) string {
	s = SanitizeJSON(s)

	var out strings.Builder
	out.Grow(len(s))
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			out.WriteByte(ch)
			if escaped {
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
				if missingCommaAfter(s, i+1) {
					out.WriteByte(',')
				}
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out.WriteByte(ch)
		case ',':
			j := i + 1
			for j < len(s) && (isJSONSpace(s[j]) || s[j] == ',') {
				j++
			}
			// Trailing comma before a closer is dropped; runs of commas
			// collapse to one.
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				i = j - 1
				continue
			}
			out.WriteByte(',')
			i = j - 1
		case '}', ']':
			out.WriteByte(ch)
			if missingCommaAfter(s, i+1) {
				out.WriteByte(',')
			}
		default:
			out.WriteByte(ch)
		}
	}

	return out.String()
}

// missingCommaAfter reports whether the value ending at position pos-1 is
// immediately followed by the start of another value with no separator.
func missingCommaAfter(s string, pos int) bool {
	for pos < len(s) && isJSONSpace(s[pos]) {
		pos++
	}
	if pos >= len(s) {
		return false
	}
	return s[pos] == '"' || s[pos] == '{' || s[pos] == '['
}

func isJSONSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// SanitizeJSON escapes literal newlines inside string values, a common
// mis-escape in generated output.
func SanitizeJSON(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if escaped {
			out.WriteByte(ch)
			escaped = false
			continue
		}
		if ch == '\\' {
			out.WriteByte(ch)
			escaped = true
			continue
		}
		if ch == '"' {
			out.WriteByte(ch)
			inString = !inString
			continue
		}

		if inString && (ch == '\n' || ch == '\r') {
			out.WriteString("\\n")
			if ch == '\r' && i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			continue
		}

		out.WriteByte(ch)
	}

	return out.String()
}
