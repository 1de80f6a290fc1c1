// Package snapshot orchestrates one run of the engine: ignore rule loading,
// scanning, parallel content capture, and summary accounting.
package snapshot

import (
	"context"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/snapgrab/snapgrab/internal/capture"
	"github.com/snapgrab/snapgrab/internal/ignore"
	"github.com/snapgrab/snapgrab/internal/scan"
	"github.com/snapgrab/snapgrab/internal/tokenizer"
	"github.com/snapgrab/snapgrab/internal/types"
)

// maximumDefaultCaptureWorkers caps the worker count derived from the CPU count.
const maximumDefaultCaptureWorkers = 8

// Options parameterizes one snapshot run.
type Options struct {
	RootDirectory        string
	IncludeContent       bool
	UseGitignore         bool
	ExtraExcludePatterns []string
	Capture              capture.Options
	CaptureWorkers       int
	TokenCounter         tokenizer.Counter
	TokenModel           string
	// OutputPathWithinRoot names the output directory relative to the scan root
	// when it sits inside it, so a snapshot never captures earlier snapshots.
	OutputPathWithinRoot string
	Logger               *zap.Logger
}

// Result carries the filtered tree, the captures in scan order, every skipped
// entry, and the aggregate summary.
type Result struct {
	Tree    *types.TreeNode
	Files   []types.CapturedFile
	Skipped []types.SkippedPath
	Summary types.RunSummary
}

// Run executes a snapshot. Capture is parallelized across files, but results
// land in a slice indexed by scan position, so output ordering is identical to
// a sequential run regardless of completion order. A failed capture is recorded
// on its file and never cancels sibling captures.
func Run(ctx context.Context, options Options) (Result, error) {
	warn := func(message string) {}
	if options.Logger != nil {
		warn = func(message string) { options.Logger.Warn(message) }
	}

	userRules, loadError := ignore.LoadRules(options.RootDirectory, ignore.LoadOptions{
		UseGitignore:  options.UseGitignore,
		ExtraPatterns: options.ExtraExcludePatterns,
		Warn:          warn,
	})
	if loadError != nil {
		return Result{}, loadError
	}

	var additionalDefaults []string
	if options.OutputPathWithinRoot != "" {
		additionalDefaults = append(additionalDefaults, filepath.ToSlash(options.OutputPathWithinRoot)+"/")
	}
	matcher := ignore.NewMatcher(userRules, additionalDefaults...)

	scanResult, scanError := scan.Scan(options.RootDirectory, matcher, scan.Options{Warn: warn})
	if scanError != nil {
		return Result{}, scanError
	}

	result := Result{Tree: scanResult.Root, Skipped: scanResult.Skipped}
	fileNodes := collectFileNodes(scanResult.Root)

	if options.IncludeContent {
		capturedFiles, captureError := captureAll(ctx, fileNodes, options)
		if captureError != nil {
			return Result{}, captureError
		}
		result.Files = capturedFiles
	}

	result.Summary = summarize(fileNodes, result.Files, scanResult.Skipped, options)
	return result, nil
}

// captureAll reads every included file with a bounded worker pool.
func captureAll(ctx context.Context, fileNodes []*types.TreeNode, options Options) ([]types.CapturedFile, error) {
	capturedFiles := make([]types.CapturedFile, len(fileNodes))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(captureWorkerCount(options.CaptureWorkers))

	for fileIndex, fileNode := range fileNodes {
		fileIndex, fileNode := fileIndex, fileNode
		group.Go(func() error {
			if contextError := groupCtx.Err(); contextError != nil {
				return contextError
			}
			absolutePath := absoluteNodePath(options.RootDirectory, fileNode)
			capturedFile := capture.CaptureFile(absolutePath, fileNode.Path, options.Capture)
			if options.TokenCounter != nil && capturedFile.Captured() {
				countResult, countError := tokenizer.CountText(options.TokenCounter, capturedFile.Content)
				if countError == nil && countResult.Counted {
					capturedFile.Tokens = countResult.Tokens
				}
			}
			capturedFiles[fileIndex] = capturedFile
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return capturedFiles, nil
}

// summarize aggregates run counters from captures and scan-level skips.
func summarize(fileNodes []*types.TreeNode, capturedFiles []types.CapturedFile, scanSkipped []types.SkippedPath, options Options) types.RunSummary {
	summary := types.RunSummary{TokenModel: options.TokenModel}

	if capturedFiles == nil {
		summary.ProcessedFiles = len(fileNodes)
		for _, fileNode := range fileNodes {
			summary.TotalBytes += fileNode.SizeBytes
		}
	} else {
		for _, capturedFile := range capturedFiles {
			switch {
			case capturedFile.SkipReason == types.SkipReasonUnreadable:
				summary.ErroredFiles++
			case capturedFile.SkipReason != "":
				summary.SkippedFiles++
			default:
				summary.ProcessedFiles++
				summary.TotalBytes += capturedFile.SizeBytes
				summary.TotalTokens += capturedFile.Tokens
			}
		}
	}

	for _, skippedPath := range scanSkipped {
		if skippedPath.Reason == types.SkipReasonIrregular {
			summary.SkippedFiles++
		} else {
			summary.ErroredFiles++
		}
	}
	return summary
}

// collectFileNodes flattens the tree's file leaves in depth-first order.
func collectFileNodes(node *types.TreeNode) []*types.TreeNode {
	if node == nil {
		return nil
	}
	if node.Kind == types.NodeKindFile {
		return []*types.TreeNode{node}
	}
	var fileNodes []*types.TreeNode
	for _, childNode := range node.Children {
		fileNodes = append(fileNodes, collectFileNodes(childNode)...)
	}
	return fileNodes
}

func absoluteNodePath(rootDirectory string, fileNode *types.TreeNode) string {
	if fileNode.Path == "." {
		return rootDirectory
	}
	return filepath.Join(rootDirectory, filepath.FromSlash(fileNode.Path))
}

func captureWorkerCount(configuredWorkers int) int {
	if configuredWorkers > 0 {
		return configuredWorkers
	}
	workerCount := runtime.NumCPU()
	if workerCount > maximumDefaultCaptureWorkers {
		workerCount = maximumDefaultCaptureWorkers
	}
	if workerCount < 1 {
		workerCount = 1
	}
	return workerCount
}
