package utils_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/snapgrab/snapgrab/internal/utils"
)

// TestSanitizeFileName verifies unsafe characters are replaced and empty input
// falls back to a usable name.
func TestSanitizeFileName(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		input    string
		expected string
	}{
		{testName: "plain name unchanged", input: "my-project", expected: "my-project"},
		{testName: "path separators replaced", input: "a/b\\c", expected: "a_b_c"},
		{testName: "windows-reserved characters replaced", input: `out:*?"<>|`, expected: "out_______"},
		{testName: "surrounding whitespace trimmed", input: "  spaced  ", expected: "spaced"},
		{testName: "empty input falls back", input: "", expected: "snapshot"},
		{testName: "whitespace-only input falls back", input: "   ", expected: "snapshot"},
	}

	for caseIndex, testCase := range testCases {
		sanitized := utils.SanitizeFileName(testCase.input)
		if sanitized != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %q, got %q", caseIndex, testCase.testName, testCase.expected, sanitized)
		}
	}
}

// TestExpandOutputFileName verifies placeholder substitution yields a sortable
// timestamp and leaves no placeholder residue.
func TestExpandOutputFileName(testingInstance *testing.T) {
	moment := time.Date(2024, time.March, 5, 14, 30, 45, 0, time.UTC)

	expanded := utils.ExpandOutputFileName("demo_contents-{time}.md", moment)
	if expanded != "demo_contents-20240305-143045.md" {
		testingInstance.Errorf("expected timestamped name, got %q", expanded)
	}
	if strings.Contains(expanded, "{time}") {
		testingInstance.Errorf("expected placeholder fully replaced, got %q", expanded)
	}

	withoutPlaceholder := utils.ExpandOutputFileName("fixed-name.md", moment)
	if withoutPlaceholder != "fixed-name.md" {
		testingInstance.Errorf("expected pattern without placeholder unchanged, got %q", withoutPlaceholder)
	}
}

// TestFormatFileSize verifies unit selection and rounding.
func TestFormatFileSize(testingInstance *testing.T) {
	testCases := []struct {
		bytes    int64
		expected string
	}{
		{bytes: 0, expected: "0b"},
		{bytes: 512, expected: "512b"},
		{bytes: 1024, expected: "1kb"},
		{bytes: 1536, expected: "1.5kb"},
		{bytes: 10 * 1024, expected: "10kb"},
		{bytes: 5 * 1024 * 1024, expected: "5mb"},
		{bytes: -1, expected: "0b"},
	}

	for caseIndex, testCase := range testCases {
		formatted := utils.FormatFileSize(testCase.bytes)
		if formatted != testCase.expected {
			testingInstance.Errorf("case %d: expected %q for %d bytes, got %q", caseIndex, testCase.expected, testCase.bytes, formatted)
		}
	}
}

// TestDeduplicatePatterns verifies order-preserving duplicate removal.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	deduplicated := utils.DeduplicatePatterns([]string{"*.log", "dist/", "*.log", "dist/", "*.tmp"})
	expected := []string{"*.log", "dist/", "*.tmp"}
	if !reflect.DeepEqual(deduplicated, expected) {
		testingInstance.Errorf("expected %v, got %v", expected, deduplicated)
	}
}

