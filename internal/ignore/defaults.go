package ignore

import "github.com/snapgrab/snapgrab/internal/utils"

// defaultExcludedPatterns lists the built-in exclusions compiled into every
// matcher: version-control metadata, dependency and build trees, editor state,
// OS artifact files, and the tool's own ignore files. These are fixed policy and
// cannot be negated from an ignore file, so the directories they name are never
// captured into an artifact.
var defaultExcludedPatterns = []string{
	utils.GitDirectoryName + "/",
	".svn/",
	".hg/",
	"node_modules/",
	"bower_components/",
	"__pycache__/",
	".venv/",
	"venv/",
	".tox/",
	".mypy_cache/",
	".pytest_cache/",
	"dist/",
	"build/",
	"target/",
	".idea/",
	".vscode/",
	".DS_Store",
	"Thumbs.db",
	utils.GitIgnoreFileName,
	utils.ToolIgnoreFileName,
}

// DefaultExcludedPatterns returns a copy of the built-in exclusion patterns.
func DefaultExcludedPatterns() []string {
	return append([]string(nil), defaultExcludedPatterns...)
}

// compileDefaultRules compiles the built-in exclusions plus any additional
// non-negatable patterns supplied by the caller (such as the run's own output
// directory when it sits inside the scan root). Built-in patterns are trusted
// literals; a compile failure here is a programming error and the pattern is
// simply dropped.
func compileDefaultRules(additionalPatterns []string) []Rule {
	patterns := append(DefaultExcludedPatterns(), additionalPatterns...)
	var compiledRules []Rule
	for _, patternText := range utils.DeduplicatePatterns(patterns) {
		compiledRule, ok, compileError := CompilePattern(patternText)
		if compileError != nil || !ok {
			continue
		}
		compiledRules = append(compiledRules, compiledRule)
	}
	return compiledRules
}
