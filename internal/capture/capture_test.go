package capture_test

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/snapgrab/snapgrab/internal/capture"
	"github.com/snapgrab/snapgrab/internal/types"
)

// writeCaptureFile creates a file with raw bytes in a fresh temp directory.
func writeCaptureFile(testingInstance *testing.T, fileName string, content []byte) string {
	testingInstance.Helper()
	filePath := filepath.Join(testingInstance.TempDir(), fileName)
	if writeError := os.WriteFile(filePath, content, 0o644); writeError != nil {
		testingInstance.Fatalf("write %s: %v", fileName, writeError)
	}
	return filePath
}

// TestClassifyBytes verifies the text/binary heuristics.
func TestClassifyBytes(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		data     []byte
		expected string
	}{
		{
			testName: "empty data is text",
			data:     nil,
			expected: types.EncodingUTF8,
		},
		{
			testName: "null byte is binary",
			data:     []byte{'a', 0, 'b'},
			expected: types.EncodingBinary,
		},
		{
			testName: "plain ascii is utf-8",
			data:     []byte("package main\n"),
			expected: types.EncodingUTF8,
		},
		{
			testName: "multibyte utf-8 is utf-8",
			data:     []byte("héllo wörld\n"),
			expected: types.EncodingUTF8,
		},
		{
			testName: "latin-1 byte falls back to windows-1252",
			data:     []byte("caf\xe9\n"),
			expected: types.EncodingWindows1252,
		},
		{
			testName: "control-heavy data is binary",
			data:     append([]byte("\xff"), bytes.Repeat([]byte{0x01, 0x02}, 50)...),
			expected: types.EncodingBinary,
		},
		{
			testName: "utf-8 rune split at chunk boundary stays text",
			data:     []byte("héllo")[:3],
			expected: types.EncodingUTF8,
		},
	}

	for caseIndex, testCase := range testCases {
		classified := capture.ClassifyBytes(testCase.data)
		if classified != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %s, got %s", caseIndex, testCase.testName, testCase.expected, classified)
		}
	}
}

// TestCaptureTextFile verifies a plain text capture round-trips its content.
func TestCaptureTextFile(testingInstance *testing.T) {
	fileContent := "line one\nline two\n"
	filePath := writeCaptureFile(testingInstance, "sample.txt", []byte(fileContent))

	captured := capture.CaptureFile(filePath, "sample.txt", capture.Options{})
	if captured.SkipReason != "" {
		testingInstance.Fatalf("unexpected skip reason %q", captured.SkipReason)
	}
	if captured.Encoding != types.EncodingUTF8 {
		testingInstance.Errorf("expected utf-8 encoding, got %s", captured.Encoding)
	}
	if captured.Content != fileContent {
		testingInstance.Errorf("expected content round-trip, got %q", captured.Content)
	}
	if captured.SizeBytes != int64(len(fileContent)) {
		testingInstance.Errorf("expected size %d, got %d", len(fileContent), captured.SizeBytes)
	}
	if captured.Truncated {
		testingInstance.Errorf("expected untruncated capture")
	}
}

// TestCaptureBinarySkipped verifies binary files are skipped with no content
// when binary capture is disabled.
func TestCaptureBinarySkipped(testingInstance *testing.T) {
	binaryContent := bytes.Repeat([]byte{0x00, 0x10, 0xFF}, 1024)
	filePath := writeCaptureFile(testingInstance, "blob.bin", binaryContent)

	captured := capture.CaptureFile(filePath, "blob.bin", capture.Options{IncludeBinaries: false})
	if captured.SkipReason != types.SkipReasonBinary {
		testingInstance.Fatalf("expected skip reason %s, got %q", types.SkipReasonBinary, captured.SkipReason)
	}
	if captured.Content != "" {
		testingInstance.Errorf("expected no content bytes for skipped binary")
	}
}

// TestCaptureBinaryIncluded verifies binary content is base64 encoded when
// binary capture is enabled.
func TestCaptureBinaryIncluded(testingInstance *testing.T) {
	binaryContent := []byte{0x00, 0x01, 0x02, 0x03}
	filePath := writeCaptureFile(testingInstance, "blob.bin", binaryContent)

	captured := capture.CaptureFile(filePath, "blob.bin", capture.Options{IncludeBinaries: true})
	if captured.SkipReason != "" {
		testingInstance.Fatalf("unexpected skip reason %q", captured.SkipReason)
	}
	if captured.Encoding != types.EncodingBinary {
		testingInstance.Errorf("expected binary encoding, got %s", captured.Encoding)
	}
	if captured.Content != base64.StdEncoding.EncodeToString(binaryContent) {
		testingInstance.Errorf("expected base64 content, got %q", captured.Content)
	}
}

// TestCaptureOversizeTruncate verifies the truncation policy bounds content at
// the ceiling and flags the capture.
func TestCaptureOversizeTruncate(testingInstance *testing.T) {
	fileContent := strings.Repeat("abcdefgh", 1024)
	filePath := writeCaptureFile(testingInstance, "big.txt", []byte(fileContent))

	captured := capture.CaptureFile(filePath, "big.txt", capture.Options{
		MaxFileSizeBytes: 100,
		OversizePolicy:   capture.OversizePolicyTruncate,
	})
	if captured.SkipReason != "" {
		testingInstance.Fatalf("unexpected skip reason %q", captured.SkipReason)
	}
	if !captured.Truncated {
		testingInstance.Errorf("expected truncated capture")
	}
	if len(captured.Content) != 100 {
		testingInstance.Errorf("expected 100 content bytes, got %d", len(captured.Content))
	}
	if captured.Content != fileContent[:100] {
		testingInstance.Errorf("expected content prefix preserved")
	}
	if captured.SizeBytes != int64(len(fileContent)) {
		testingInstance.Errorf("expected on-disk size reported, got %d", captured.SizeBytes)
	}
}

// TestCaptureTruncationPreservesValidUTF8 verifies a ceiling that falls inside
// a multi-byte rune drops the partial rune instead of emitting invalid bytes.
func TestCaptureTruncationPreservesValidUTF8(testingInstance *testing.T) {
	fileContent := strings.Repeat("é", 64)
	filePath := writeCaptureFile(testingInstance, "accents.txt", []byte(fileContent))

	captured := capture.CaptureFile(filePath, "accents.txt", capture.Options{
		MaxFileSizeBytes: 3,
		OversizePolicy:   capture.OversizePolicyTruncate,
	})
	if captured.SkipReason != "" {
		testingInstance.Fatalf("unexpected skip reason %q", captured.SkipReason)
	}
	if !captured.Truncated {
		testingInstance.Errorf("expected truncated capture")
	}
	if captured.Content != "é" {
		testingInstance.Errorf("expected partial rune dropped, got %q", captured.Content)
	}
	if !utf8.ValidString(captured.Content) {
		testingInstance.Errorf("expected valid UTF-8 content, got %q", captured.Content)
	}
}

// TestCaptureOversizeSkip verifies the skip policy drops oversized files with
// a reason and no content.
func TestCaptureOversizeSkip(testingInstance *testing.T) {
	filePath := writeCaptureFile(testingInstance, "big.txt", bytes.Repeat([]byte{'x'}, 4096))

	captured := capture.CaptureFile(filePath, "big.txt", capture.Options{
		MaxFileSizeBytes: 100,
		OversizePolicy:   capture.OversizePolicySkip,
	})
	if captured.SkipReason != types.SkipReasonTooLarge {
		testingInstance.Fatalf("expected skip reason %s, got %q", types.SkipReasonTooLarge, captured.SkipReason)
	}
	if captured.Content != "" {
		testingInstance.Errorf("expected no content for skipped oversized file")
	}
}

// TestCaptureWindows1252Decode verifies the fallback decode produces UTF-8 text.
func TestCaptureWindows1252Decode(testingInstance *testing.T) {
	filePath := writeCaptureFile(testingInstance, "legacy.txt", []byte("caf\xe9 au lait\n"))

	captured := capture.CaptureFile(filePath, "legacy.txt", capture.Options{})
	if captured.SkipReason != "" {
		testingInstance.Fatalf("unexpected skip reason %q", captured.SkipReason)
	}
	if captured.Encoding != types.EncodingWindows1252 {
		testingInstance.Errorf("expected windows-1252 encoding, got %s", captured.Encoding)
	}
	if captured.Content != "café au lait\n" {
		testingInstance.Errorf("expected decoded content, got %q", captured.Content)
	}
}

// TestCaptureMissingFile verifies an unreadable path yields a recorded skip,
// never an abort.
func TestCaptureMissingFile(testingInstance *testing.T) {
	missingPath := filepath.Join(testingInstance.TempDir(), "absent.txt")

	captured := capture.CaptureFile(missingPath, "absent.txt", capture.Options{})
	if captured.SkipReason != types.SkipReasonUnreadable {
		testingInstance.Errorf("expected skip reason %s, got %q", types.SkipReasonUnreadable, captured.SkipReason)
	}
}

// TestCaptureValidPrefixInvalidTail verifies a file that starts as valid UTF-8
// but turns invalid later degrades to a binary classification.
func TestCaptureValidPrefixInvalidTail(testingInstance *testing.T) {
	fileContent := append(bytes.Repeat([]byte("valid utf-8 prefix\n"), 512), 0x00, 0xFF, 0xFE)
	filePath := writeCaptureFile(testingInstance, "mixed.dat", fileContent)

	captured := capture.CaptureFile(filePath, "mixed.dat", capture.Options{IncludeBinaries: false})
	if captured.SkipReason != types.SkipReasonBinary {
		testingInstance.Errorf("expected degraded binary skip, got reason %q encoding %s", captured.SkipReason, captured.Encoding)
	}
}
