package ai

import "log"

// TruncateToLimit is a simple truncation for prompt context that must fit in
// one message
func TruncateToLimit(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	log.Printf("[Truncate] Truncating from %d to %d chars", len(content), maxChars)
	return content[:maxChars] + "\n...[truncated]"
}
