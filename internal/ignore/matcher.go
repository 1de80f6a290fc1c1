package ignore

import (
	"strings"
)

// Verdict is the outcome of matching one path against a compiled rule set.
type Verdict int

const (
	// VerdictIncluded means no rule excluded the path.
	VerdictIncluded Verdict = iota
	// VerdictExcluded means the path is dropped from scanning and capture.
	VerdictExcluded
)

// Matcher holds an ordered, immutable rule set. Matching is deterministic and
// side-effect-free; a matcher is rebuilt for every run so ignore file edits
// between runs always take effect.
type Matcher struct {
	userRules    []Rule
	defaultRules []Rule
}

// NewMatcher builds a matcher from compiled user rules. The built-in default
// exclusions and any additionalDefaultPatterns are appended as fixed policy:
// a path matching one of them is excluded regardless of negation rules.
func NewMatcher(userRules []Rule, additionalDefaultPatterns ...string) *Matcher {
	return &Matcher{
		userRules:    userRules,
		defaultRules: compileDefaultRules(additionalDefaultPatterns),
	}
}

// Matches evaluates the path relative to the scan root. User rules are applied
// in file order with the last matching rule deciding; a negation rule
// re-includes a previously excluded path. An excluded ancestor directory
// dominates: nothing inside an excluded directory can be re-included.
func (matcher *Matcher) Matches(relativePath string, isDirectory bool) Verdict {
	normalizedPath := normalizeRelativePath(relativePath)
	if normalizedPath == "" {
		return VerdictIncluded
	}
	pathSegments := strings.Split(normalizedPath, pathSeparator)

	for ancestorLength := 1; ancestorLength < len(pathSegments); ancestorLength++ {
		if matcher.verdictFor(pathSegments[:ancestorLength], true) == VerdictExcluded {
			return VerdictExcluded
		}
	}

	return matcher.verdictFor(pathSegments, isDirectory)
}

// verdictFor computes the verdict for one exact path without ancestor handling.
func (matcher *Matcher) verdictFor(pathSegments []string, isDirectory bool) Verdict {
	for _, defaultRule := range matcher.defaultRules {
		if defaultRule.matchesPath(pathSegments, isDirectory) {
			return VerdictExcluded
		}
	}

	verdict := VerdictIncluded
	for _, userRule := range matcher.userRules {
		if !userRule.matchesPath(pathSegments, isDirectory) {
			continue
		}
		if userRule.IsNegation {
			verdict = VerdictIncluded
		} else {
			verdict = VerdictExcluded
		}
	}
	return verdict
}

// normalizeRelativePath converts a relative path to forward-slash form and
// strips leading "./" noise. The scan root itself normalizes to "".
func normalizeRelativePath(relativePath string) string {
	normalized := strings.ReplaceAll(relativePath, "\\", pathSeparator)
	normalized = strings.TrimPrefix(normalized, "./")
	normalized = strings.Trim(normalized, pathSeparator)
	if normalized == "." {
		return ""
	}
	return normalized
}
