package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/snapgrab/snapgrab/internal/ignore"
	"github.com/snapgrab/snapgrab/internal/render"
	"github.com/snapgrab/snapgrab/internal/scan"
)

// treeOptions stores flag values for the tree command.
type treeOptions struct {
	exclusionPatterns []string
	disableGitignore  bool
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(logger *zap.Logger) *cobra.Command {
	var options treeOptions

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			targetPath := defaultPath
			if len(arguments) == 1 {
				targetPath = arguments[0]
			}
			return runTree(targetPath, options, logger)
		},
	}

	treeCommand.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	treeCommand.Flags().BoolVar(&options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	return treeCommand
}

// runTree scans the target and prints the filtered tree without capturing content.
func runTree(targetPath string, options treeOptions, logger *zap.Logger) error {
	targetDirectory, targetError := resolveTargetDirectory(targetPath)
	if targetError != nil {
		return targetError
	}

	warn := func(message string) { logger.Warn(message) }
	userRules, loadError := ignore.LoadRules(targetDirectory, ignore.LoadOptions{
		UseGitignore:  !options.disableGitignore,
		ExtraPatterns: options.exclusionPatterns,
		Warn:          warn,
	})
	if loadError != nil {
		return loadError
	}

	scanResult, scanError := scan.Scan(targetDirectory, ignore.NewMatcher(userRules), scan.Options{Warn: warn})
	if scanError != nil {
		return scanError
	}

	fmt.Print(render.RenderTree(scanResult.Root))
	return nil
}
