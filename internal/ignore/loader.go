package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/snapgrab/snapgrab/internal/utils"
)

// loadErrorFormat reports a failure to read an ignore file.
const loadErrorFormat = "loading %s from %s: %w"

// LoadOptions controls which ignore files are read from the scan root and which
// extra patterns are appended after them.
type LoadOptions struct {
	UseGitignore  bool
	ExtraPatterns []string
	Warn          func(message string)
}

// LoadRules reads the scan root's .gitignore (when enabled) followed by the
// tool-specific ignore file and compiles their patterns in that order, so later
// files override earlier ones under last-match-wins evaluation. ExtraPatterns
// from settings or command flags are compiled last. Missing files are not an
// error; unreadable ones are.
func LoadRules(rootDirectory string, options LoadOptions) ([]Rule, error) {
	var compiledRules []Rule

	if options.UseGitignore {
		gitignoreRules, loadError := loadRulesFromFile(filepath.Join(rootDirectory, utils.GitIgnoreFileName), options.Warn)
		if loadError != nil {
			return nil, fmt.Errorf(loadErrorFormat, utils.GitIgnoreFileName, rootDirectory, loadError)
		}
		compiledRules = append(compiledRules, gitignoreRules...)
	}

	toolRules, loadError := loadRulesFromFile(filepath.Join(rootDirectory, utils.ToolIgnoreFileName), options.Warn)
	if loadError != nil {
		return nil, fmt.Errorf(loadErrorFormat, utils.ToolIgnoreFileName, rootDirectory, loadError)
	}
	compiledRules = append(compiledRules, toolRules...)

	for _, extraPattern := range utils.DeduplicatePatterns(options.ExtraPatterns) {
		trimmedPattern := strings.TrimSpace(extraPattern)
		if trimmedPattern == "" {
			continue
		}
		extraRule, ok, compileError := CompilePattern(trimmedPattern)
		if compileError != nil {
			if options.Warn != nil {
				options.Warn(fmt.Sprintf(invalidPatternFormat, trimmedPattern, compileError))
			}
			continue
		}
		if ok {
			compiledRules = append(compiledRules, extraRule)
		}
	}

	return compiledRules, nil
}

// loadRulesFromFile compiles the patterns of one ignore file. A missing file
// yields no rules.
func loadRulesFromFile(ignoreFilePath string, warn func(message string)) ([]Rule, error) {
	fileContent, readError := os.ReadFile(ignoreFilePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return nil, nil
		}
		return nil, readError
	}
	return CompileRules(string(fileContent), warn), nil
}
