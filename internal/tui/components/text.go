package components

import "strings"

// splitLines splits s on newlines, returning nil for an empty string
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := len([]rune(word))

		if lineLen > 0 && lineLen+wordLen+1 > width {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}

// clampLines keeps the first n lines, marking the cut with an ellipsis
func clampLines(text string, n int) string {
	lines := splitLines(text)
	if n <= 0 || len(lines) <= n {
		return text
	}
	lines = lines[:n]
	lines[n-1] = strings.TrimRight(lines[n-1], " ") + "…"
	return strings.Join(lines, "\n")
}
