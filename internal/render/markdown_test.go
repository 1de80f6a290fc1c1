package render_test

import (
	"strings"
	"testing"

	"github.com/snapgrab/snapgrab/internal/render"
	"github.com/snapgrab/snapgrab/internal/types"
)

// buildTestTree returns a small filtered tree with one directory and two files.
func buildTestTree() *types.TreeNode {
	return &types.TreeNode{
		Path: ".",
		Name: "demo",
		Kind: types.NodeKindDirectory,
		Children: []*types.TreeNode{
			{
				Path: "src",
				Name: "src",
				Kind: types.NodeKindDirectory,
				Children: []*types.TreeNode{
					{Path: "src/app.py", Name: "app.py", Kind: types.NodeKindFile},
				},
			},
			{Path: "notes.txt", Name: "notes.txt", Kind: types.NodeKindFile},
		},
	}
}

// TestRenderTreeConnectors verifies box-drawing layout and directory suffixes.
func TestRenderTreeConnectors(testingInstance *testing.T) {
	rendered := render.RenderTree(buildTestTree())

	expected := "demo/\n" +
		"├── src/\n" +
		"│   └── app.py\n" +
		"└── notes.txt\n"
	if rendered != expected {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expected, rendered)
	}
}

// TestRenderArtifactSections verifies the artifact carries every section in
// order with the content envelope and appended prompt.
func TestRenderArtifactSections(testingInstance *testing.T) {
	capturedFiles := []types.CapturedFile{
		{Path: "src/app.py", Encoding: types.EncodingUTF8, Content: "print('hello')\n"},
		{Path: "notes.txt", Encoding: types.EncodingUTF8, Content: "remember\n"},
	}
	skippedPaths := []types.SkippedPath{{Path: "blob.bin", Reason: types.SkipReasonBinary}}

	artifact := render.RenderArtifact(buildTestTree(), capturedFiles, skippedPaths, render.ArtifactOptions{
		ProjectName:    "demo",
		IncludeContent: true,
		PromptText:     "Review this project.",
		Summary:        types.RunSummary{ProcessedFiles: 2, SkippedFiles: 1, TotalBytes: 24},
	})

	orderedMarkers := []string{
		"# Project Snapshot: demo\n",
		"<project_contents>\n",
		"## Directory Tree\n",
		"├── src/",
		"## File Contents\n",
		"### src/app.py\n",
		"```python\nprint('hello')\n```",
		"### notes.txt\n",
		"## Skipped Paths\n",
		"- blob.bin (binary)\n",
		"## Summary\n",
		"- Files captured: 2 (24b)\n",
		"- Skipped: 1\n",
		"</project_contents>\n",
		"Review this project.\n",
	}
	searchOffset := 0
	for _, marker := range orderedMarkers {
		markerIndex := strings.Index(artifact[searchOffset:], marker)
		if markerIndex < 0 {
			testingInstance.Fatalf("expected marker %q after offset %d in artifact:\n%s", marker, searchOffset, artifact)
		}
		searchOffset += markerIndex + len(marker)
	}
}

// TestRenderArtifactTreeOnly verifies the content-less artifact omits file
// bodies and the envelope.
func TestRenderArtifactTreeOnly(testingInstance *testing.T) {
	artifact := render.RenderArtifact(buildTestTree(), nil, nil, render.ArtifactOptions{
		ProjectName:    "demo",
		IncludeContent: false,
		PromptText:     "should not appear",
	})

	if !strings.Contains(artifact, "## Directory Tree") {
		testingInstance.Errorf("expected tree section in tree-only artifact")
	}
	if strings.Contains(artifact, "## File Contents") {
		testingInstance.Errorf("expected no contents section in tree-only artifact")
	}
	if strings.Contains(artifact, "<project_contents>") {
		testingInstance.Errorf("expected no content envelope in tree-only artifact")
	}
	if strings.Contains(artifact, "should not appear") {
		testingInstance.Errorf("expected prompt omitted from tree-only artifact")
	}
}

// TestRenderArtifactSkipPlaceholders verifies skipped and truncated captures
// render self-describing placeholders instead of bodies.
func TestRenderArtifactSkipPlaceholders(testingInstance *testing.T) {
	capturedFiles := []types.CapturedFile{
		{Path: "huge.sql", SkipReason: types.SkipReasonTooLarge, SizeBytes: 1 << 30},
		{Path: "partial.log", Encoding: types.EncodingUTF8, Content: "first half", Truncated: true},
		{Path: "image.png", Encoding: types.EncodingBinary, Content: "aGVsbG8="},
	}

	artifact := render.RenderArtifact(buildTestTree(), capturedFiles, nil, render.ArtifactOptions{
		ProjectName:      "demo",
		IncludeContent:   true,
		MaxFileSizeBytes: 1024,
	})

	if !strings.Contains(artifact, "(content skipped: too-large)") {
		testingInstance.Errorf("expected skip placeholder for oversized file")
	}
	if !strings.Contains(artifact, "_Content truncated at 1kb._") {
		testingInstance.Errorf("expected truncation note, got:\n%s", artifact)
	}
	if !strings.Contains(artifact, "(binary content, base64)\naGVsbG8=") {
		testingInstance.Errorf("expected base64 binary body, got:\n%s", artifact)
	}
}

// TestFenceLanguage verifies extension mapping and the unknown fallback.
func TestFenceLanguage(testingInstance *testing.T) {
	testCases := []struct {
		filePath string
		expected string
	}{
		{filePath: "main.go", expected: "go"},
		{filePath: "src/app.py", expected: "python"},
		{filePath: "web/index.ts", expected: "typescript"},
		{filePath: "README.md", expected: "markdown"},
		{filePath: "Dockerfile.tar.gz", expected: ""},
		{filePath: "noextension", expected: ""},
	}
	for caseIndex, testCase := range testCases {
		languageTag := render.FenceLanguage(testCase.filePath)
		if languageTag != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %q, got %q", caseIndex, testCase.filePath, testCase.expected, languageTag)
		}
	}
}

// TestEscapeMarkdown verifies fence markers and syntax characters are
// neutralized.
func TestEscapeMarkdown(testingInstance *testing.T) {
	escaped := render.EscapeMarkdown("# Title\nsome_name with *stars*\n```\ncode\n```\n")

	if strings.Contains(escaped, "```") {
		testingInstance.Errorf("expected fence markers neutralized, got %q", escaped)
	}
	if !strings.Contains(escaped, "\\# Title") {
		testingInstance.Errorf("expected heading marker escaped, got %q", escaped)
	}
	if !strings.Contains(escaped, "some\\_name") {
		testingInstance.Errorf("expected underscore escaped, got %q", escaped)
	}
	if !strings.Contains(escaped, "\\*stars\\*") {
		testingInstance.Errorf("expected asterisks escaped, got %q", escaped)
	}
}
