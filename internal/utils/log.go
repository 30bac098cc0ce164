package utils

import "strings"

// TruncateForLog flattens s onto one line and cuts it to limit runes, appending "..." when cut.
// Prompts and model replies are multi-line; console log previews should not be.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	flat := strings.Join(strings.Fields(s), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return string(runes[:limit]) + "..."
}
