package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/snapgrab/snapgrab/internal/types"
	"github.com/snapgrab/snapgrab/internal/utils"
)

const (
	artifactTitleFormat   = "# Project Snapshot: %s\n\n"
	treeSectionHeader     = "## Directory Tree\n\n"
	contentsSectionHeader = "## File Contents\n\n"
	skippedSectionHeader  = "## Skipped Paths\n\n"
	summarySectionHeader  = "## Summary\n\n"
	fileSectionFormat     = "### %s\n\n"
	skippedEntryFormat    = "- %s (%s)\n"
	summaryFilesFormat    = "- Files captured: %d (%s)\n"
	summaryTokensFormat   = "- Tokens: %d (%s)\n"
	summarySkippedFormat  = "- Skipped: %d\n"
	summaryErrorsFormat   = "- Errors: %d\n"
	skippedBodyFormat     = "(content skipped: %s)\n"
	truncatedNoteFormat   = "_Content truncated at %s._\n\n"
	binaryBodyNote        = "(binary content, base64)\n"

	promptOpenTag  = "<project_contents>\n"
	promptCloseTag = "</project_contents>\n\n"

	codeFence = "```"
)

// ArtifactOptions parameterizes markdown rendering.
type ArtifactOptions struct {
	ProjectName string
	// IncludeContent controls whether file bodies appear; when set the content
	// sections are wrapped in a <project_contents> envelope and PromptText, if
	// any, is appended after it.
	IncludeContent bool
	PromptText     string
	// MaxFileSizeBytes is echoed into truncation notes.
	MaxFileSizeBytes int64
	Summary          types.RunSummary
}

// RenderArtifact produces the complete markdown artifact: title, directory
// tree, per-file content sections, and the list of skipped paths with reasons,
// so the output stays self-describing even when incomplete.
func RenderArtifact(tree *types.TreeNode, capturedFiles []types.CapturedFile, skippedPaths []types.SkippedPath, options ArtifactOptions) string {
	var buffer bytes.Buffer

	buffer.WriteString(fmt.Sprintf(artifactTitleFormat, options.ProjectName))

	if options.IncludeContent {
		buffer.WriteString(promptOpenTag)
	}

	buffer.WriteString(treeSectionHeader)
	buffer.WriteString(codeFence + "\n")
	buffer.WriteString(RenderTree(tree))
	buffer.WriteString(codeFence + "\n\n")

	if options.IncludeContent {
		buffer.WriteString(contentsSectionHeader)
		for _, capturedFile := range capturedFiles {
			writeFileSection(&buffer, capturedFile, options)
		}
	}

	if len(skippedPaths) > 0 {
		buffer.WriteString(skippedSectionHeader)
		for _, skippedPath := range skippedPaths {
			buffer.WriteString(fmt.Sprintf(skippedEntryFormat, skippedPath.Path, skippedPath.Reason))
		}
		buffer.WriteString("\n")
	}

	writeSummarySection(&buffer, options.Summary)

	if options.IncludeContent {
		buffer.WriteString(promptCloseTag)
		if options.PromptText != "" {
			buffer.WriteString(options.PromptText)
			if !strings.HasSuffix(options.PromptText, "\n") {
				buffer.WriteString("\n")
			}
		}
	}

	return buffer.String()
}

// writeSummarySection renders the run counters so the artifact stays
// self-describing without the terminal output.
func writeSummarySection(buffer *bytes.Buffer, summary types.RunSummary) {
	buffer.WriteString(summarySectionHeader)
	buffer.WriteString(fmt.Sprintf(summaryFilesFormat, summary.ProcessedFiles, utils.FormatFileSize(summary.TotalBytes)))
	if summary.TotalTokens > 0 {
		buffer.WriteString(fmt.Sprintf(summaryTokensFormat, summary.TotalTokens, summary.TokenModel))
	}
	buffer.WriteString(fmt.Sprintf(summarySkippedFormat, summary.SkippedFiles))
	buffer.WriteString(fmt.Sprintf(summaryErrorsFormat, summary.ErroredFiles))
	buffer.WriteString("\n")
}

// writeFileSection renders one captured file: a heading with the relative path
// followed by a fenced body, or a placeholder naming the skip reason.
func writeFileSection(buffer *bytes.Buffer, capturedFile types.CapturedFile, options ArtifactOptions) {
	buffer.WriteString(fmt.Sprintf(fileSectionFormat, capturedFile.Path))

	if capturedFile.SkipReason != "" {
		buffer.WriteString(codeFence + "\n")
		buffer.WriteString(fmt.Sprintf(skippedBodyFormat, capturedFile.SkipReason))
		buffer.WriteString(codeFence + "\n\n")
		return
	}

	if capturedFile.Encoding == types.EncodingBinary {
		buffer.WriteString(codeFence + "\n")
		buffer.WriteString(binaryBodyNote)
		buffer.WriteString(capturedFile.Content)
		buffer.WriteString("\n" + codeFence + "\n\n")
		return
	}

	languageTag := FenceLanguage(capturedFile.Path)
	fileBody := capturedFile.Content
	if languageTag == markdownLanguageTag {
		fileBody = EscapeMarkdown(fileBody)
	}

	buffer.WriteString(codeFence + languageTag + "\n")
	buffer.WriteString(fileBody)
	if !strings.HasSuffix(fileBody, "\n") {
		buffer.WriteString("\n")
	}
	buffer.WriteString(codeFence + "\n\n")

	if capturedFile.Truncated {
		buffer.WriteString(fmt.Sprintf(truncatedNoteFormat, utils.FormatFileSize(options.MaxFileSizeBytes)))
	}
}

// EscapeMarkdown neutralizes fence markers and markdown syntax in text so a
// markdown file's body renders literally inside the artifact's code blocks.
func EscapeMarkdown(text string) string {
	escaped := strings.ReplaceAll(text, codeFence, "\\`\\`\\`")
	for _, character := range `\_*[]()#+-.!` {
		escaped = strings.ReplaceAll(escaped, string(character), "\\"+string(character))
	}
	return escaped
}
