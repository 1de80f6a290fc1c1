// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/snapgrab/snapgrab/internal/utils"
)

const (
	directoryFlagName     = "dir"
	projectFlagName       = "project"
	outputFlagName        = "output"
	outputDirFlagName     = "out-dir"
	contentFlagName       = "content"
	binariesFlagName      = "binaries"
	maxFileSizeFlagName   = "max-file-size"
	oversizeFlagName      = "oversize"
	tokensFlagName        = "tokens"
	modelFlagName         = "model"
	clipboardFlagName     = "clipboard"
	exclusionFlagName     = "e"
	noGitignoreFlagName   = "no-gitignore"
	workersFlagName       = "workers"
	versionFlagName       = "version"
	versionTemplate       = "snapgrab version: %s\n"
	defaultPath           = "."
	rootUse               = "snapgrab"
	rootShortDescription  = "snapgrab command line interface"
	rootLongDescription   = `snapgrab captures a filtered snapshot of a project directory.
It walks the target, applies gitignore-style rules plus built-in excludes, and writes
a single markdown artifact containing the directory tree and every included file's
content, ready for pasting into an LLM prompt. Runs are parameterized by named,
persisted configurations managed with the config subcommand.`
	versionFlagDescription = "display application version"

	snapshotUse              = "snapshot [configuration]"
	treeUse                  = "tree [path]"
	configUse                = "config"
	snapshotAlias            = "s"
	treeAlias                = "t"
	snapshotShortDescription = "capture a project snapshot (" + snapshotAlias + ")"
	treeShortDescription     = "preview the filtered directory tree (" + treeAlias + ")"
	configShortDescription   = "manage named snapshot configurations"

	// snapshotLongDescription provides detailed help for the snapshot command.
	snapshotLongDescription = `Capture a snapshot using a named configuration or ad-hoc flags.
Without a configuration name, --dir selects the target directory and --project names
the snapshot. Content capture honors --binaries, --max-file-size, and --oversize.`
	// snapshotUsageExample demonstrates snapshot command usage.
	snapshotUsageExample = `  # Run a stored configuration
  snapgrab snapshot backend

  # Ad-hoc snapshot of the current directory without file bodies
  snapgrab snapshot --dir . --content=false

  # Skip oversized files instead of truncating them
  snapgrab snapshot --oversize skip --max-file-size 1048576`

	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Print the filtered directory tree for a path without capturing content.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Preview what a snapshot of the current directory would include
  snapgrab tree

  # Exclude log files on top of the ignore files
  snapgrab tree -e "*.log" ./service`

	directoryFlagDescription        = "target directory to snapshot"
	projectFlagDescription          = "project name used in the artifact and output path"
	outputFlagDescription           = "output file name; {time} expands to a timestamp"
	outputDirFlagDescription        = "directory receiving the artifact"
	contentFlagDescription          = "include file contents in the artifact"
	binariesFlagDescription         = "include binary file content as base64"
	maxFileSizeFlagDescription      = "per-file content ceiling in bytes"
	oversizeFlagDescription         = "oversized file policy: truncate or skip"
	tokensFlagDescription           = "include token counts"
	modelFlagDescription            = "tokenizer model to use for token counting"
	clipboardFlagDescription        = "copy the artifact path to the clipboard"
	exclusionFlagDescription        = "exclude path pattern"
	disableGitignoreFlagDescription = "do not read .gitignore from the scan root"
	workersFlagDescription          = "parallel capture workers (0 = auto)"
	defaultTokenizerModelName       = "gpt-4o"

	invalidOversizePolicyFormat = "invalid oversize policy '%s': expected truncate or skip"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	// errorPathMissingFormat reports a missing path.
	errorPathMissingFormat = "path '%s' does not exist"
	// errorNotDirectoryFormat reports a target path that is not a directory.
	errorNotDirectoryFormat = "path '%s' is not a directory"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
)

// Execute runs the snapgrab application.
func Execute(logger *zap.Logger) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createSnapshotCommand(logger),
		createTreeCommand(logger),
		createConfigCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// resolveTargetDirectory validates that the provided path exists and is a directory,
// returning its absolute form.
func resolveTargetDirectory(inputPath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(inputPath)
	if absoluteError != nil {
		return "", absoluteError
	}
	info, statError := os.Stat(absolutePath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", fmt.Errorf(errorPathMissingFormat, inputPath)
		}
		return "", fmt.Errorf(errorStatFormat, inputPath, statError)
	}
	if !info.IsDir() {
		return "", fmt.Errorf(errorNotDirectoryFormat, inputPath)
	}
	return absolutePath, nil
}
