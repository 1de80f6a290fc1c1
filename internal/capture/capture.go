package capture

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/snapgrab/snapgrab/internal/types"
)

// OversizePolicy selects how files above the size ceiling are handled.
type OversizePolicy string

const (
	// OversizePolicyTruncate captures the first MaxFileSizeBytes of an
	// oversized file and marks the capture truncated. This is the default;
	// partial context beats no context in the artifact.
	OversizePolicyTruncate OversizePolicy = "truncate"
	// OversizePolicySkip drops oversized files entirely.
	OversizePolicySkip OversizePolicy = "skip"
)

const (
	// sniffLength defines the number of bytes read for encoding classification.
	sniffLength = 8000
	// readChunkSize bounds each streaming read from disk.
	readChunkSize = 64 * 1024
	// DefaultMaxFileSizeBytes is the content ceiling applied when no explicit
	// limit is configured.
	DefaultMaxFileSizeBytes int64 = 5 * 1024 * 1024
)

// Options parameterizes content capture.
type Options struct {
	IncludeBinaries  bool
	MaxFileSizeBytes int64
	OversizePolicy   OversizePolicy
}

// normalized fills in defaults for zero-valued options.
func (options Options) normalized() Options {
	if options.MaxFileSizeBytes <= 0 {
		options.MaxFileSizeBytes = DefaultMaxFileSizeBytes
	}
	if options.OversizePolicy == "" {
		options.OversizePolicy = OversizePolicyTruncate
	}
	return options
}

// CaptureFile reads and classifies the file at filePath, producing a capture
// whose memory use is bounded by the configured ceiling regardless of on-disk
// size. Binary files yield base64 content when IncludeBinaries is set and a
// skipped capture otherwise. Failures are recorded on the capture; this
// function never aborts a run for one bad file.
func CaptureFile(filePath string, relativePath string, options Options) types.CapturedFile {
	options = options.normalized()
	captured := types.CapturedFile{Path: relativePath}

	fileInfo, statError := os.Stat(filePath)
	if statError != nil {
		captured.SkipReason = types.SkipReasonUnreadable
		return captured
	}
	captured.SizeBytes = fileInfo.Size()
	if !fileInfo.Mode().IsRegular() {
		captured.SkipReason = types.SkipReasonIrregular
		return captured
	}

	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		captured.SkipReason = types.SkipReasonUnreadable
		return captured
	}
	defer fileHandle.Close()

	sniffChunk, sniffError := readSniffChunk(fileHandle)
	if sniffError != nil {
		captured.SkipReason = types.SkipReasonUnreadable
		return captured
	}
	captured.Encoding = ClassifyBytes(sniffChunk)

	if captured.Encoding == types.EncodingBinary && !options.IncludeBinaries {
		captured.SkipReason = types.SkipReasonBinary
		return captured
	}

	if captured.SizeBytes > options.MaxFileSizeBytes {
		if options.OversizePolicy == OversizePolicySkip {
			captured.SkipReason = types.SkipReasonTooLarge
			return captured
		}
		captured.Truncated = true
	}

	fullContent, readError := readBounded(fileHandle, sniffChunk, minInt64(captured.SizeBytes, options.MaxFileSizeBytes))
	if readError != nil {
		captured.SkipReason = types.SkipReasonUnreadable
		return captured
	}

	// The byte ceiling can cut through a multi-byte rune; drop the partial rune
	// so a truncated capture never carries invalid trailing bytes.
	if captured.Truncated && captured.Encoding == types.EncodingUTF8 {
		fullContent = trimIncompleteTrailingRune(fullContent)
	}

	// A valid-looking prefix can still turn invalid later in the file; degrade
	// to the binary classification instead of emitting mangled text.
	if captured.Encoding == types.EncodingUTF8 && !utf8.Valid(trimIncompleteTrailingRune(fullContent)) {
		captured.Encoding = ClassifyBytes(fullContent)
		if captured.Encoding == types.EncodingBinary && !options.IncludeBinaries {
			captured.SkipReason = types.SkipReasonBinary
			return captured
		}
	}

	switch captured.Encoding {
	case types.EncodingBinary:
		captured.Content = base64.StdEncoding.EncodeToString(fullContent)
	case types.EncodingWindows1252:
		decodedContent, decodeError := charmap.Windows1252.NewDecoder().Bytes(fullContent)
		if decodeError != nil {
			captured.Encoding = types.EncodingBinary
			if !options.IncludeBinaries {
				captured.SkipReason = types.SkipReasonBinary
				return captured
			}
			captured.Content = base64.StdEncoding.EncodeToString(fullContent)
			return captured
		}
		captured.Content = string(decodedContent)
	default:
		captured.Content = string(fullContent)
	}
	return captured
}

// readSniffChunk reads the classification prefix from the start of the file.
func readSniffChunk(fileHandle *os.File) ([]byte, error) {
	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && readError != io.EOF && readError != io.ErrUnexpectedEOF {
		return nil, readError
	}
	return buffer[:bytesRead], nil
}

// readBounded streams the remainder of the file after the sniff chunk in fixed
// chunks, never holding more than limit bytes plus one chunk of overhead.
func readBounded(fileHandle *os.File, sniffChunk []byte, limit int64) ([]byte, error) {
	if int64(len(sniffChunk)) >= limit {
		return sniffChunk[:int(limit)], nil
	}

	contentBuffer := bytes.NewBuffer(make([]byte, 0, limit))
	contentBuffer.Write(sniffChunk)

	remainingReader := io.LimitReader(fileHandle, limit-int64(len(sniffChunk)))
	readChunk := make([]byte, readChunkSize)
	for {
		bytesRead, readError := remainingReader.Read(readChunk)
		if bytesRead > 0 {
			contentBuffer.Write(readChunk[:bytesRead])
		}
		if readError == io.EOF {
			break
		}
		if readError != nil {
			return nil, readError
		}
	}
	return contentBuffer.Bytes(), nil
}

func minInt64(first int64, second int64) int64 {
	if first < second {
		return first
	}
	return second
}
