// Package capture classifies files as text or binary and reads their content
// into size-bounded captures for the output artifact.
package capture

import (
	"unicode/utf8"

	"github.com/snapgrab/snapgrab/internal/types"
)

// controlCharacterThresholdDivisor classifies a chunk as binary when more than
// one tenth of its bytes are control characters outside tab, newline and
// carriage return.
const controlCharacterThresholdDivisor = 10

// ClassifyBytes inspects a chunk of file content and reports its encoding.
// A null byte always classifies binary. Valid UTF-8 classifies text. Anything
// else is treated as Windows-1252 text unless the chunk is dominated by control
// characters, which classifies binary. The function is pure so the heuristics
// stay independently testable.
func ClassifyBytes(data []byte) string {
	if len(data) == 0 {
		return types.EncodingUTF8
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return types.EncodingBinary
		}
	}
	if utf8.Valid(trimIncompleteTrailingRune(data)) {
		return types.EncodingUTF8
	}
	if countControlCharacters(data) > len(data)/controlCharacterThresholdDivisor {
		return types.EncodingBinary
	}
	return types.EncodingWindows1252
}

// trimIncompleteTrailingRune drops a multi-byte rune cut off by a chunk
// boundary so a sniff of a valid UTF-8 file is not misclassified.
func trimIncompleteTrailingRune(data []byte) []byte {
	trimmed := data
	for trailing := 1; trailing <= utf8.UTFMax && trailing <= len(data); trailing++ {
		byteValue := data[len(data)-trailing]
		if byteValue < utf8.RuneSelf {
			break
		}
		if byteValue&0xC0 == 0xC0 {
			// Start byte of a rune: drop it when the rune cannot be complete.
			if !utf8.FullRune(data[len(data)-trailing:]) {
				trimmed = data[:len(data)-trailing]
			}
			break
		}
	}
	return trimmed
}

func countControlCharacters(data []byte) int {
	controlCount := 0
	for _, byteValue := range data {
		if byteValue == '\t' || byteValue == '\n' || byteValue == '\r' {
			continue
		}
		if byteValue < 0x20 || byteValue == 0x7F {
			controlCount++
		}
	}
	return controlCount
}
