// Package scan walks a target root depth-first, consults the ignore matcher per
// entry, and builds the ordered tree of included paths.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/snapgrab/snapgrab/internal/ignore"
	"github.com/snapgrab/snapgrab/internal/types"
)

const (
	rootRelativePath = "."

	warningUnreadableFormat = "Warning: skipping unreadable %s: %v"
	warningCycleFormat      = "Warning: skipping symlink cycle at %s"
	warningIrregularFormat  = "Warning: skipping irregular file %s"
	errorRootStatFormat     = "stat scan root %s: %w"
)

// Options configures a scan. Warn receives one message per skipped entry and
// may be nil.
type Options struct {
	Warn func(message string)
}

// Result is the outcome of one scan: the filtered tree plus every entry that
// was dropped for a reason other than an ignore rule, in traversal order.
type Result struct {
	Root    *types.TreeNode
	Skipped []types.SkippedPath
}

// scanner carries per-traversal state.
type scanner struct {
	matcher *ignore.Matcher
	warn    func(message string)
	skipped []types.SkippedPath
}

// Scan traverses rootDirectory depth-first and returns the filtered tree.
// Excluded directories are pruned without descending. Entries at each level are
// ordered directories first, then files, each group lexicographically, so two
// scans of unchanged content produce identical results. Unreadable subtrees and
// symlink cycles are recorded as skipped and never abort the scan.
func Scan(rootDirectory string, matcher *ignore.Matcher, options Options) (Result, error) {
	rootInfo, statError := os.Stat(rootDirectory)
	if statError != nil {
		return Result{}, fmt.Errorf(errorRootStatFormat, rootDirectory, statError)
	}

	walker := &scanner{matcher: matcher, warn: options.Warn}
	if walker.warn == nil {
		walker.warn = func(string) {}
	}

	if !rootInfo.IsDir() {
		rootNode := &types.TreeNode{
			Path:      rootRelativePath,
			Name:      filepath.Base(rootDirectory),
			Kind:      types.NodeKindFile,
			SizeBytes: rootInfo.Size(),
		}
		return Result{Root: rootNode}, nil
	}

	visitedRealPaths := make(map[string]struct{})
	if realRootPath, resolveError := filepath.EvalSymlinks(rootDirectory); resolveError == nil {
		visitedRealPaths[realRootPath] = struct{}{}
	}

	rootNode := &types.TreeNode{
		Path: rootRelativePath,
		Name: filepath.Base(rootDirectory),
		Kind: types.NodeKindDirectory,
	}
	walker.walkDirectory(rootDirectory, "", rootNode, visitedRealPaths)

	return Result{Root: rootNode, Skipped: walker.skipped}, nil
}

// resolvedEntry pairs one directory entry's name with its symlink-resolved
// file info, so ordering and traversal agree on what is a directory.
type resolvedEntry struct {
	name string
	info fs.FileInfo
}

// walkDirectory reads one directory, filters its entries, and appends the
// included children to parentNode. visitedRealPaths holds the resolved paths of
// every directory on the current branch for symlink cycle detection.
func (walker *scanner) walkDirectory(absolutePath string, relativePath string, parentNode *types.TreeNode, visitedRealPaths map[string]struct{}) {
	directoryEntries, readError := os.ReadDir(absolutePath)
	if readError != nil {
		walker.recordSkip(displayPath(relativePath), types.SkipReasonUnreadable)
		walker.warn(fmt.Sprintf(warningUnreadableFormat, absolutePath, readError))
		return
	}

	resolvedEntries := walker.resolveEntries(absolutePath, relativePath, directoryEntries)
	orderEntries(resolvedEntries)

	for _, childEntry := range resolvedEntries {
		childAbsolutePath := filepath.Join(absolutePath, childEntry.name)
		childRelativePath := joinRelative(relativePath, childEntry.name)
		entryInfo := childEntry.info

		if entryInfo.IsDir() {
			if walker.matcher.Matches(childRelativePath, true) == ignore.VerdictExcluded {
				continue
			}
			realChildPath, resolveError := filepath.EvalSymlinks(childAbsolutePath)
			if resolveError != nil {
				walker.recordSkip(childRelativePath, types.SkipReasonUnreadable)
				walker.warn(fmt.Sprintf(warningUnreadableFormat, childAbsolutePath, resolveError))
				continue
			}
			if _, alreadyVisited := visitedRealPaths[realChildPath]; alreadyVisited {
				walker.recordSkip(childRelativePath, types.SkipReasonCycle)
				walker.warn(fmt.Sprintf(warningCycleFormat, childAbsolutePath))
				continue
			}

			childNode := &types.TreeNode{
				Path: childRelativePath,
				Name: childEntry.name,
				Kind: types.NodeKindDirectory,
			}
			visitedRealPaths[realChildPath] = struct{}{}
			walker.walkDirectory(childAbsolutePath, childRelativePath, childNode, visitedRealPaths)
			delete(visitedRealPaths, realChildPath)

			// A directory with no included descendants is omitted from the tree.
			if len(childNode.Children) > 0 {
				parentNode.Children = append(parentNode.Children, childNode)
			}
			continue
		}

		if walker.matcher.Matches(childRelativePath, false) == ignore.VerdictExcluded {
			continue
		}
		if !entryInfo.Mode().IsRegular() {
			walker.recordSkip(childRelativePath, types.SkipReasonIrregular)
			walker.warn(fmt.Sprintf(warningIrregularFormat, childAbsolutePath))
			continue
		}

		parentNode.Children = append(parentNode.Children, &types.TreeNode{
			Path:      childRelativePath,
			Name:      childEntry.name,
			Kind:      types.NodeKindFile,
			SizeBytes: entryInfo.Size(),
		})
	}
}

// resolveEntries stats every entry of one directory, following symlinks so a
// link to a directory orders and traverses as a directory. Entries whose info
// cannot be resolved are recorded as skipped.
func (walker *scanner) resolveEntries(absolutePath string, relativePath string, directoryEntries []fs.DirEntry) []resolvedEntry {
	resolvedEntries := make([]resolvedEntry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		childAbsolutePath := filepath.Join(absolutePath, directoryEntry.Name())
		entryInfo, infoError := entryFileInfo(childAbsolutePath, directoryEntry)
		if infoError != nil {
			walker.recordSkip(joinRelative(relativePath, directoryEntry.Name()), types.SkipReasonUnreadable)
			walker.warn(fmt.Sprintf(warningUnreadableFormat, childAbsolutePath, infoError))
			continue
		}
		resolvedEntries = append(resolvedEntries, resolvedEntry{name: directoryEntry.Name(), info: entryInfo})
	}
	return resolvedEntries
}

// entryFileInfo resolves the info of one directory entry, following symlinks so
// a link to a directory is traversed as a directory.
func entryFileInfo(absolutePath string, directoryEntry fs.DirEntry) (fs.FileInfo, error) {
	if directoryEntry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(absolutePath)
	}
	return directoryEntry.Info()
}

// orderEntries sorts resolved entries directories first, then files, each group
// lexicographically by name.
func orderEntries(resolvedEntries []resolvedEntry) {
	sort.SliceStable(resolvedEntries, func(firstIndex, secondIndex int) bool {
		firstEntry := resolvedEntries[firstIndex]
		secondEntry := resolvedEntries[secondIndex]
		if firstEntry.info.IsDir() != secondEntry.info.IsDir() {
			return firstEntry.info.IsDir()
		}
		return firstEntry.name < secondEntry.name
	})
}

func (walker *scanner) recordSkip(relativePath string, reason string) {
	walker.skipped = append(walker.skipped, types.SkippedPath{Path: relativePath, Reason: reason})
}

func joinRelative(parentRelativePath string, entryName string) string {
	if parentRelativePath == "" {
		return entryName
	}
	return parentRelativePath + "/" + entryName
}

func displayPath(relativePath string) string {
	if relativePath == "" {
		return rootRelativePath
	}
	return relativePath
}
