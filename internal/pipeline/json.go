package pipeline

import (
	"strings"

	"github.com/sells-group/outreach-cli/pkg/llm"
)

// completionRequest builds the common request shape for classifier,
// generation and judge calls.
func completionRequest(system, prompt string, maxTokens int, temperature float64, jsonResponse bool) llm.CompletionRequest {
	return llm.CompletionRequest{
		System:       system,
		Prompt:       prompt,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
		JSONResponse: jsonResponse,
	}
}

// truncateRunes caps s at limit runes, never splitting a multi-byte
// character.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
