// Package utils contains general helper functions used across the snapshot tool.
package utils

import (
	"strings"
	"time"
)

// timePlaceholder is the token in an output file name replaced with a timestamp.
const timePlaceholder = "{time}"

// outputTimestampLayout formats the timestamp substituted for timePlaceholder.
const outputTimestampLayout = "20060102-150405"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// SanitizeFileName replaces characters that are unsafe in file names with underscores
// and trims surrounding whitespace. An empty result falls back to "snapshot".
func SanitizeFileName(name string) string {
	trimmedName := strings.TrimSpace(name)
	var builder strings.Builder
	for _, character := range trimmedName {
		switch character {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			builder.WriteRune('_')
		default:
			builder.WriteRune(character)
		}
	}
	sanitized := builder.String()
	if sanitized == EmptyString {
		return "snapshot"
	}
	return sanitized
}

// ExpandOutputFileName substitutes the {time} placeholder in pattern with the
// provided moment formatted as a sortable timestamp and sanitizes the result.
func ExpandOutputFileName(pattern string, moment time.Time) string {
	expanded := strings.ReplaceAll(pattern, timePlaceholder, moment.Format(outputTimestampLayout))
	return SanitizeFileName(expanded)
}
