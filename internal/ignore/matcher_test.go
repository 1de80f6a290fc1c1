package ignore_test

import (
	"testing"

	"github.com/snapgrab/snapgrab/internal/ignore"
)

// compileTestRules compiles a rule list from pattern lines, failing the test on
// patterns that do not compile.
func compileTestRules(testingInstance *testing.T, patternLines []string) []ignore.Rule {
	testingInstance.Helper()
	var compiledRules []ignore.Rule
	for _, patternLine := range patternLines {
		compiledRule, ok, compileError := ignore.CompilePattern(patternLine)
		if compileError != nil {
			testingInstance.Fatalf("pattern %q failed to compile: %v", patternLine, compileError)
		}
		if ok {
			compiledRules = append(compiledRules, compiledRule)
		}
	}
	return compiledRules
}

// TestMatcherVerdicts verifies exclusion, negation, anchoring, and wildcard
// semantics of the ordered rule set.
func TestMatcherVerdicts(testingInstance *testing.T) {
	testCases := []struct {
		testName     string
		patterns     []string
		relativePath string
		isDirectory  bool
		expected     ignore.Verdict
	}{
		{
			testName:     "no rules includes path",
			patterns:     nil,
			relativePath: "src/app.py",
			expected:     ignore.VerdictIncluded,
		},
		{
			testName:     "wildcard excludes at any depth",
			patterns:     []string{"*.log"},
			relativePath: "service/build.log",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "later negation re-includes",
			patterns:     []string{"*.txt", "!notes.txt"},
			relativePath: "notes.txt",
			expected:     ignore.VerdictIncluded,
		},
		{
			testName:     "negation applies at depth",
			patterns:     []string{"*.txt", "!notes.txt"},
			relativePath: "docs/notes.txt",
			expected:     ignore.VerdictIncluded,
		},
		{
			testName:     "rule order is last match wins",
			patterns:     []string{"!notes.txt", "*.txt"},
			relativePath: "notes.txt",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "anchored pattern matches root only",
			patterns:     []string{"/build.log"},
			relativePath: "build.log",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "anchored pattern does not match nested path",
			patterns:     []string{"/build.log"},
			relativePath: "sub/build.log",
			expected:     ignore.VerdictIncluded,
		},
		{
			testName:     "interior separator anchors pattern",
			patterns:     []string{"doc/*.md"},
			relativePath: "other/doc/readme.md",
			expected:     ignore.VerdictIncluded,
		},
		{
			testName:     "interior separator matches from root",
			patterns:     []string{"doc/*.md"},
			relativePath: "doc/readme.md",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "double star spans directory levels",
			patterns:     []string{"a/**/b"},
			relativePath: "a/x/y/b",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "double star matches zero levels",
			patterns:     []string{"a/**/b"},
			relativePath: "a/b",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "question mark matches one character",
			patterns:     []string{"file?.txt"},
			relativePath: "file1.txt",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "question mark rejects two characters",
			patterns:     []string{"file?.txt"},
			relativePath: "file10.txt",
			expected:     ignore.VerdictIncluded,
		},
		{
			testName:     "character class matches",
			patterns:     []string{"[ab].go"},
			relativePath: "a.go",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "directory-only rule ignores file of same name",
			patterns:     []string{"cache/"},
			relativePath: "cache",
			isDirectory:  false,
			expected:     ignore.VerdictIncluded,
		},
		{
			testName:     "directory-only rule matches directory",
			patterns:     []string{"cache/"},
			relativePath: "cache",
			isDirectory:  true,
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "excluded ancestor dominates negation",
			patterns:     []string{"secret/", "!secret/visible.txt"},
			relativePath: "secret/visible.txt",
			expected:     ignore.VerdictExcluded,
		},
		{
			testName:     "negated directory re-includes descendants",
			patterns:     []string{"tmp/", "!tmp/"},
			relativePath: "tmp/keep.txt",
			expected:     ignore.VerdictIncluded,
		},
	}

	for caseIndex, testCase := range testCases {
		matcher := ignore.NewMatcher(compileTestRules(testingInstance, testCase.patterns))
		verdict := matcher.Matches(testCase.relativePath, testCase.isDirectory)
		if verdict != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %v, got %v", caseIndex, testCase.testName, testCase.expected, verdict)
		}
	}
}

// TestDefaultExcludesAreNotNegatable verifies that built-in exclusions survive
// negation rules from the ignore file.
func TestDefaultExcludesAreNotNegatable(testingInstance *testing.T) {
	testCases := []struct {
		testName     string
		patterns     []string
		relativePath string
		isDirectory  bool
	}{
		{
			testName:     "node_modules survives negation",
			patterns:     []string{"!node_modules"},
			relativePath: "node_modules",
			isDirectory:  true,
		},
		{
			testName:     "git directory survives negation",
			patterns:     []string{"!.git"},
			relativePath: ".git",
			isDirectory:  true,
		},
		{
			testName:     "os artifact file survives negation",
			patterns:     []string{"!.DS_Store"},
			relativePath: "photos/.DS_Store",
			isDirectory:  false,
		},
		{
			testName:     "path inside default-excluded directory stays excluded",
			patterns:     []string{"!node_modules/pkg/index.js"},
			relativePath: "node_modules/pkg/index.js",
			isDirectory:  false,
		},
	}

	for caseIndex, testCase := range testCases {
		matcher := ignore.NewMatcher(compileTestRules(testingInstance, testCase.patterns))
		if matcher.Matches(testCase.relativePath, testCase.isDirectory) != ignore.VerdictExcluded {
			testingInstance.Errorf("case %d (%s): expected exclusion for %s", caseIndex, testCase.testName, testCase.relativePath)
		}
	}
}

// TestAdditionalDefaultPatterns verifies that caller-supplied default patterns,
// such as the run's output directory, behave as fixed policy.
func TestAdditionalDefaultPatterns(testingInstance *testing.T) {
	matcher := ignore.NewMatcher(compileTestRules(testingInstance, []string{"!output"}), "output/")

	if matcher.Matches("output", true) != ignore.VerdictExcluded {
		testingInstance.Errorf("expected output directory to be excluded despite negation")
	}
	if matcher.Matches("output/project/snapshot.md", false) != ignore.VerdictExcluded {
		testingInstance.Errorf("expected paths under output directory to be excluded")
	}
}

// TestCompilePattern verifies modifier parsing on single patterns.
func TestCompilePattern(testingInstance *testing.T) {
	testCases := []struct {
		testName       string
		patternLine    string
		expectRule     bool
		expectNegation bool
		expectDirOnly  bool
		expectAnchored bool
	}{
		{testName: "blank line is skipped", patternLine: "   "},
		{testName: "comment line is skipped", patternLine: "# build artifacts"},
		{testName: "plain pattern", patternLine: "*.log", expectRule: true},
		{testName: "negation prefix", patternLine: "!keep.log", expectRule: true, expectNegation: true},
		{testName: "trailing slash marks directory-only", patternLine: "vendor/", expectRule: true, expectDirOnly: true},
		{testName: "leading slash anchors", patternLine: "/Makefile", expectRule: true, expectAnchored: true},
		{testName: "interior slash anchors", patternLine: "src/gen", expectRule: true, expectAnchored: true},
		{testName: "all modifiers combine", patternLine: "!/docs/", expectRule: true, expectNegation: true, expectDirOnly: true, expectAnchored: true},
	}

	for caseIndex, testCase := range testCases {
		compiledRule, ok, compileError := ignore.CompilePattern(testCase.patternLine)
		if compileError != nil {
			testingInstance.Fatalf("case %d (%s): unexpected error: %v", caseIndex, testCase.testName, compileError)
		}
		if ok != testCase.expectRule {
			testingInstance.Errorf("case %d (%s): expected rule presence %t, got %t", caseIndex, testCase.testName, testCase.expectRule, ok)
			continue
		}
		if !ok {
			continue
		}
		if compiledRule.IsNegation != testCase.expectNegation {
			testingInstance.Errorf("case %d (%s): expected negation %t", caseIndex, testCase.testName, testCase.expectNegation)
		}
		if compiledRule.IsDirOnly != testCase.expectDirOnly {
			testingInstance.Errorf("case %d (%s): expected directory-only %t", caseIndex, testCase.testName, testCase.expectDirOnly)
		}
		if compiledRule.IsAnchored != testCase.expectAnchored {
			testingInstance.Errorf("case %d (%s): expected anchored %t", caseIndex, testCase.testName, testCase.expectAnchored)
		}
	}
}

// TestCompileRulesSkipsInvalidPatterns verifies that malformed patterns are
// reported and dropped without aborting compilation.
func TestCompileRulesSkipsInvalidPatterns(testingInstance *testing.T) {
	var warnings []string
	compiledRules := ignore.CompileRules("*.log\n[\nkeep.txt\n", func(message string) {
		warnings = append(warnings, message)
	})

	if len(compiledRules) != 2 {
		testingInstance.Fatalf("expected 2 compiled rules, got %d", len(compiledRules))
	}
	if len(warnings) != 1 {
		testingInstance.Errorf("expected 1 warning for the malformed pattern, got %d", len(warnings))
	}
}
