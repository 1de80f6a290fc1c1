// Package ignore compiles gitignore-style patterns into an ordered rule set and
// answers whether a path relative to the scan root is excluded from processing.
package ignore

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

const (
	commentPrefix        = "#"
	negationPrefix       = "!"
	pathSeparator        = "/"
	doubleStarSegment    = "**"
	invalidPatternFormat = "Warning: skipping invalid ignore pattern %q: %v"
)

// Rule is one compiled ignore pattern. Rules are immutable once compiled and are
// evaluated in file order; the last matching rule decides the verdict for a path.
type Rule struct {
	Raw        string
	IsNegation bool
	IsDirOnly  bool
	IsAnchored bool
	segments   []ruleSegment
}

// ruleSegment is one path component of a compiled pattern. A double-star segment
// spans zero or more directory levels; every other segment matches exactly one
// path component without crossing a separator.
type ruleSegment struct {
	isDoubleStar bool
	matcher      glob.Glob
}

// CompileRules parses ignore file content line by line into an ordered rule slice.
// Blank lines and comment lines are skipped. Lines that fail glob compilation are
// reported through warn (when non-nil) and dropped; a malformed pattern never
// aborts a run.
func CompileRules(ignoreFileContent string, warn func(message string)) []Rule {
	var compiledRules []Rule
	for _, rawLine := range strings.Split(ignoreFileContent, "\n") {
		compiledRule, ok, compileError := CompilePattern(rawLine)
		if compileError != nil {
			if warn != nil {
				warn(fmt.Sprintf(invalidPatternFormat, strings.TrimSpace(rawLine), compileError))
			}
			continue
		}
		if ok {
			compiledRules = append(compiledRules, compiledRule)
		}
	}
	return compiledRules
}

// CompilePattern compiles a single ignore pattern. The boolean result is false for
// blank and comment lines. A leading "!" marks negation, a trailing "/" restricts
// the rule to directories, and a leading "/" anchors the rule to the scan root. A
// pattern containing an interior separator is anchored as well, matching
// gitwildmatch behavior.
func CompilePattern(rawLine string) (Rule, bool, error) {
	trimmedLine := strings.TrimSpace(rawLine)
	if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
		return Rule{}, false, nil
	}

	rule := Rule{Raw: trimmedLine}
	patternText := trimmedLine

	if strings.HasPrefix(patternText, negationPrefix) {
		rule.IsNegation = true
		patternText = strings.TrimPrefix(patternText, negationPrefix)
	}
	if strings.HasSuffix(patternText, pathSeparator) {
		rule.IsDirOnly = true
		patternText = strings.TrimSuffix(patternText, pathSeparator)
	}
	if strings.HasPrefix(patternText, pathSeparator) {
		rule.IsAnchored = true
		patternText = strings.TrimPrefix(patternText, pathSeparator)
	}
	if strings.Contains(patternText, pathSeparator) {
		rule.IsAnchored = true
	}
	if patternText == "" {
		return Rule{}, false, nil
	}

	for _, segmentText := range strings.Split(patternText, pathSeparator) {
		if segmentText == doubleStarSegment {
			rule.segments = append(rule.segments, ruleSegment{isDoubleStar: true})
			continue
		}
		segmentMatcher, compileError := glob.Compile(segmentText, '/')
		if compileError != nil {
			return Rule{}, false, compileError
		}
		rule.segments = append(rule.segments, ruleSegment{matcher: segmentMatcher})
	}

	return rule, true, nil
}

// matchesPath reports whether the rule matches the provided path segments for an
// entry of the given kind. Directory-only rules reject non-directories here;
// ancestor handling is the matcher's responsibility.
func (rule Rule) matchesPath(pathSegments []string, isDirectory bool) bool {
	if rule.IsDirOnly && !isDirectory {
		return false
	}
	if rule.IsAnchored {
		return matchSegments(rule.segments, pathSegments)
	}
	for startIndex := 0; startIndex < len(pathSegments); startIndex++ {
		if matchSegments(rule.segments, pathSegments[startIndex:]) {
			return true
		}
	}
	return false
}

// matchSegments matches rule segments against path segments, consuming both
// completely. Double-star segments expand to zero or more path components.
func matchSegments(ruleSegments []ruleSegment, pathSegments []string) bool {
	if len(ruleSegments) == 0 {
		return len(pathSegments) == 0
	}
	if ruleSegments[0].isDoubleStar {
		for skipCount := 0; skipCount <= len(pathSegments); skipCount++ {
			if matchSegments(ruleSegments[1:], pathSegments[skipCount:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegments) == 0 {
		return false
	}
	if !ruleSegments[0].matcher.Match(pathSegments[0]) {
		return false
	}
	return matchSegments(ruleSegments[1:], pathSegments[1:])
}
