package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// CompactPromptText trims tabs and excessive blank lines while preserving
// horizontal spacing. OCR encodes column structure (seller vs buyer blocks)
// through runs of spaces; collapsing them makes the LLM mix up the columns.
func CompactPromptText(text string) string {
	text = strings.ReplaceAll(text, "\t", " ")
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// CleanLines splits raw extractor output into trimmed, non-empty lines.
func CleanLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// JoinPages annotates each page so downstream prompts keep pagination
// context.
func JoinPages(pages []string) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== Page %d ===\n", i+1)
		b.WriteString(page)
	}
	return b.String()
}
