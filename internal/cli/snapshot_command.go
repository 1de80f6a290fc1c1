package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/snapgrab/snapgrab/internal/capture"
	"github.com/snapgrab/snapgrab/internal/config"
	"github.com/snapgrab/snapgrab/internal/configstore"
	"github.com/snapgrab/snapgrab/internal/render"
	"github.com/snapgrab/snapgrab/internal/services/clipboard"
	"github.com/snapgrab/snapgrab/internal/snapshot"
	"github.com/snapgrab/snapgrab/internal/tokenizer"
	"github.com/snapgrab/snapgrab/internal/utils"
)

const (
	defaultOutputDirectory      = "output"
	defaultOutputFileNameFormat = "%s_contents-{time}.md"
	defaultPromptFileName       = "prompt.txt"

	artifactPermissionMode  = 0o644
	directoryPermissionMode = 0o755

	artifactWrittenFormat = "Snapshot written to %s"
	summaryLineFormat     = "%d files captured (%s)"
	summaryTokensFormat   = ", %d tokens (%s)"
	summarySkippedFormat  = "%d skipped"
	summaryErrorsFormat   = "%d errors"
	clipboardFailedFormat = "Warning: clipboard copy failed: %v"
	promptReadFailFormat  = "Warning: unable to read prompt file %s: %v"
	writeArtifactFormat   = "write artifact %s: %w"
	parentTraversal       = ".."
)

// snapshotOptions stores flag values for the snapshot command.
type snapshotOptions struct {
	directory         string
	project           string
	outputFileName    string
	outputDirectory   string
	includeContent    bool
	includeBinaries   bool
	maxFileSizeBytes  int64
	oversizePolicy    string
	tokensEnabled     bool
	tokenModel        string
	clipboardEnabled  bool
	exclusionPatterns []string
	disableGitignore  bool
	captureWorkers    int
	promptFilePath    string
}

// createSnapshotCommand returns the snapshot subcommand.
func createSnapshotCommand(logger *zap.Logger) *cobra.Command {
	options := snapshotOptions{
		directory:        defaultPath,
		includeContent:   true,
		maxFileSizeBytes: capture.DefaultMaxFileSizeBytes,
		oversizePolicy:   string(capture.OversizePolicyTruncate),
		tokenModel:       defaultTokenizerModelName,
		outputDirectory:  defaultOutputDirectory,
	}

	snapshotCommand := &cobra.Command{
		Use:     snapshotUse,
		Aliases: []string{snapshotAlias},
		Short:   snapshotShortDescription,
		Long:    snapshotLongDescription,
		Example: snapshotUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configurationName := ""
			if len(arguments) == 1 {
				configurationName = arguments[0]
			}
			return runSnapshot(command, configurationName, options, logger)
		},
	}

	snapshotCommand.Flags().StringVar(&options.directory, directoryFlagName, defaultPath, directoryFlagDescription)
	snapshotCommand.Flags().StringVar(&options.project, projectFlagName, "", projectFlagDescription)
	snapshotCommand.Flags().StringVar(&options.outputFileName, outputFlagName, "", outputFlagDescription)
	snapshotCommand.Flags().StringVar(&options.outputDirectory, outputDirFlagName, defaultOutputDirectory, outputDirFlagDescription)
	snapshotCommand.Flags().BoolVar(&options.includeContent, contentFlagName, true, contentFlagDescription)
	snapshotCommand.Flags().BoolVar(&options.includeBinaries, binariesFlagName, false, binariesFlagDescription)
	snapshotCommand.Flags().Int64Var(&options.maxFileSizeBytes, maxFileSizeFlagName, capture.DefaultMaxFileSizeBytes, maxFileSizeFlagDescription)
	snapshotCommand.Flags().StringVar(&options.oversizePolicy, oversizeFlagName, string(capture.OversizePolicyTruncate), oversizeFlagDescription)
	snapshotCommand.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	snapshotCommand.Flags().StringVar(&options.tokenModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	snapshotCommand.Flags().BoolVar(&options.clipboardEnabled, clipboardFlagName, false, clipboardFlagDescription)
	snapshotCommand.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	snapshotCommand.Flags().BoolVar(&options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	snapshotCommand.Flags().IntVar(&options.captureWorkers, workersFlagName, 0, workersFlagDescription)
	return snapshotCommand
}

// runSnapshot resolves settings, the optional stored configuration, and flags
// into one run, executes it, and writes the artifact.
func runSnapshot(command *cobra.Command, configurationName string, options snapshotOptions, logger *zap.Logger) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	settings, settingsError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if settingsError != nil {
		return settingsError
	}
	options = applySnapshotSettings(command, options, settings.Snapshot)

	if configurationName != "" {
		storePath, storePathError := configstore.DefaultStorePath()
		if storePathError != nil {
			return storePathError
		}
		storedConfiguration, lookupError := configstore.NewStore(storePath).Get(configurationName)
		if lookupError != nil {
			return lookupError
		}
		if !command.Flags().Changed(directoryFlagName) {
			options.directory = storedConfiguration.TargetDirectory
		}
		if !command.Flags().Changed(projectFlagName) {
			options.project = storedConfiguration.ProjectName
		}
		if !command.Flags().Changed(outputFlagName) {
			options.outputFileName = storedConfiguration.OutputFileName
		}
		if !command.Flags().Changed(contentFlagName) {
			options.includeContent = storedConfiguration.IncludeContent
		}
	}

	oversizePolicy, policyError := parseOversizePolicy(options.oversizePolicy)
	if policyError != nil {
		return policyError
	}

	targetDirectory, targetError := resolveTargetDirectory(options.directory)
	if targetError != nil {
		return targetError
	}
	if options.project == "" {
		options.project = filepath.Base(targetDirectory)
	}
	if options.outputFileName == "" {
		options.outputFileName = fmt.Sprintf(defaultOutputFileNameFormat, options.project)
	}

	var tokenCounter tokenizer.Counter
	tokenModel := ""
	if options.tokensEnabled {
		createdCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.tokenModel})
		if counterError != nil {
			return counterError
		}
		tokenCounter = createdCounter
		tokenModel = resolvedModel
	}

	outputDirectory := options.outputDirectory
	if !filepath.IsAbs(outputDirectory) {
		outputDirectory = filepath.Join(workingDirectory, outputDirectory)
	}
	artifactDirectory := filepath.Join(outputDirectory, utils.SanitizeFileName(options.project))
	artifactPath := filepath.Join(artifactDirectory, utils.ExpandOutputFileName(options.outputFileName, time.Now()))

	runResult, runError := snapshot.Run(context.Background(), snapshot.Options{
		RootDirectory:        targetDirectory,
		IncludeContent:       options.includeContent,
		UseGitignore:         !options.disableGitignore,
		ExtraExcludePatterns: options.exclusionPatterns,
		Capture: capture.Options{
			IncludeBinaries:  options.includeBinaries,
			MaxFileSizeBytes: options.maxFileSizeBytes,
			OversizePolicy:   oversizePolicy,
		},
		CaptureWorkers:       options.captureWorkers,
		TokenCounter:         tokenCounter,
		TokenModel:           tokenModel,
		OutputPathWithinRoot: outputPathWithinRoot(targetDirectory, outputDirectory),
		Logger:               logger,
	})
	if runError != nil {
		return runError
	}

	artifactText := render.RenderArtifact(runResult.Tree, runResult.Files, runResult.Skipped, render.ArtifactOptions{
		ProjectName:      options.project,
		IncludeContent:   options.includeContent,
		PromptText:       loadPromptText(options, workingDirectory, logger),
		MaxFileSizeBytes: options.maxFileSizeBytes,
		Summary:          runResult.Summary,
	})

	if mkdirError := os.MkdirAll(artifactDirectory, directoryPermissionMode); mkdirError != nil {
		return fmt.Errorf(writeArtifactFormat, artifactPath, mkdirError)
	}
	if writeError := os.WriteFile(artifactPath, []byte(artifactText), artifactPermissionMode); writeError != nil {
		return fmt.Errorf(writeArtifactFormat, artifactPath, writeError)
	}

	printRunSummary(artifactPath, runResult)

	if options.clipboardEnabled {
		if copyError := clipboard.NewService().Copy(artifactPath); copyError != nil {
			logger.Warn(fmt.Sprintf(clipboardFailedFormat, copyError))
		}
	}
	return nil
}

// applySnapshotSettings overlays settings-file defaults onto flag values that
// the user did not set explicitly.
func applySnapshotSettings(command *cobra.Command, options snapshotOptions, settings config.SnapshotConfiguration) snapshotOptions {
	flagSet := command.Flags()
	if settings.IncludeBinaries != nil && !flagSet.Changed(binariesFlagName) {
		options.includeBinaries = *settings.IncludeBinaries
	}
	if settings.MaxFileSizeBytes != nil && !flagSet.Changed(maxFileSizeFlagName) {
		options.maxFileSizeBytes = *settings.MaxFileSizeBytes
	}
	if settings.OversizePolicy != "" && !flagSet.Changed(oversizeFlagName) {
		options.oversizePolicy = settings.OversizePolicy
	}
	if settings.OutputDirectory != "" && !flagSet.Changed(outputDirFlagName) {
		options.outputDirectory = settings.OutputDirectory
	}
	if settings.UseGitignore != nil && !flagSet.Changed(noGitignoreFlagName) {
		options.disableGitignore = !*settings.UseGitignore
	}
	if settings.CaptureWorkers != nil && !flagSet.Changed(workersFlagName) {
		options.captureWorkers = *settings.CaptureWorkers
	}
	if settings.Clipboard != nil && !flagSet.Changed(clipboardFlagName) {
		options.clipboardEnabled = *settings.Clipboard
	}
	if settings.Tokens.Enabled != nil && !flagSet.Changed(tokensFlagName) {
		options.tokensEnabled = *settings.Tokens.Enabled
	}
	if settings.Tokens.Model != "" && !flagSet.Changed(modelFlagName) {
		options.tokenModel = settings.Tokens.Model
	}
	if len(settings.Exclude) > 0 {
		options.exclusionPatterns = append(append([]string{}, settings.Exclude...), options.exclusionPatterns...)
	}
	options.promptFilePath = settings.PromptFile
	return options
}

// parseOversizePolicy validates the oversize flag value.
func parseOversizePolicy(policyValue string) (capture.OversizePolicy, error) {
	switch capture.OversizePolicy(strings.ToLower(policyValue)) {
	case capture.OversizePolicyTruncate:
		return capture.OversizePolicyTruncate, nil
	case capture.OversizePolicySkip:
		return capture.OversizePolicySkip, nil
	default:
		return "", fmt.Errorf(invalidOversizePolicyFormat, policyValue)
	}
}

// outputPathWithinRoot returns the output directory's path relative to the scan
// root when it sits inside it, so the run never captures its own artifacts.
func outputPathWithinRoot(targetDirectory string, outputDirectory string) string {
	relativePath, relativeError := filepath.Rel(targetDirectory, outputDirectory)
	if relativeError != nil || relativePath == "." || strings.HasPrefix(relativePath, parentTraversal) {
		return ""
	}
	return relativePath
}

// loadPromptText reads the prompt file appended after the content envelope.
// The settings file may name one; otherwise prompt.txt next to the working
// directory is used when present.
func loadPromptText(options snapshotOptions, workingDirectory string, logger *zap.Logger) string {
	if !options.includeContent {
		return ""
	}
	promptPath := options.promptFilePath
	if promptPath == "" {
		promptPath = filepath.Join(workingDirectory, defaultPromptFileName)
		if _, statError := os.Stat(promptPath); statError != nil {
			return ""
		}
	} else if !filepath.IsAbs(promptPath) {
		promptPath = filepath.Join(workingDirectory, promptPath)
	}
	promptContent, readError := os.ReadFile(promptPath)
	if readError != nil {
		logger.Warn(fmt.Sprintf(promptReadFailFormat, promptPath, readError))
		return ""
	}
	return string(promptContent)
}

// printRunSummary mirrors the run counters to the terminal.
func printRunSummary(artifactPath string, runResult snapshot.Result) {
	color.New(color.FgGreen).Printf(artifactWrittenFormat+"\n", artifactPath)

	summary := runResult.Summary
	summaryLine := fmt.Sprintf(summaryLineFormat, summary.ProcessedFiles, utils.FormatFileSize(summary.TotalBytes))
	if summary.TotalTokens > 0 {
		summaryLine += fmt.Sprintf(summaryTokensFormat, summary.TotalTokens, summary.TokenModel)
	}
	fmt.Println(summaryLine)

	if summary.SkippedFiles > 0 {
		color.New(color.FgYellow).Println(fmt.Sprintf(summarySkippedFormat, summary.SkippedFiles))
	}
	if summary.ErroredFiles > 0 {
		color.New(color.FgRed).Println(fmt.Sprintf(summaryErrorsFormat, summary.ErroredFiles))
	}
}
