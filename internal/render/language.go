package render

import (
	"path"
	"strings"
)

// markdownLanguageTag identifies markdown content, whose bodies are escaped so
// embedded fences do not terminate the artifact's code blocks.
const markdownLanguageTag = "markdown"

// fenceLanguageByExtension maps file extensions to code fence language tags.
var fenceLanguageByExtension = map[string]string{
	".py":         "python",
	".js":         "javascript",
	".jsx":        "javascript",
	".ts":         "typescript",
	".tsx":        "typescript",
	".html":       "html",
	".htm":        "html",
	".css":        "css",
	".java":       "java",
	".c":          "c",
	".h":          "c",
	".cpp":        "cpp",
	".hpp":        "cpp",
	".cs":         "csharp",
	".go":         "go",
	".rb":         "ruby",
	".php":        "php",
	".swift":      "swift",
	".kt":         "kotlin",
	".rs":         "rust",
	".scala":      "scala",
	".md":         markdownLanguageTag,
	".markdown":   markdownLanguageTag,
	".json":       "json",
	".yml":        "yaml",
	".yaml":       "yaml",
	".xml":        "xml",
	".sql":        "sql",
	".sh":         "bash",
	".bash":       "bash",
	".ps1":        "powershell",
	".dockerfile": "dockerfile",
	".txt":        "text",
}

// FenceLanguage returns the code fence language tag for a file path, or the
// empty string when the extension is unknown.
func FenceLanguage(filePath string) string {
	extension := strings.ToLower(path.Ext(filePath))
	return fenceLanguageByExtension[extension]
}
