// Package types defines every cross-package data structure used by the snapgrab tool.
package types

import "time"

const (
	NodeKindFile      = "file"
	NodeKindDirectory = "directory"

	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingBinary      = "binary"

	SkipReasonBinary     = "binary"
	SkipReasonTooLarge   = "too-large"
	SkipReasonUnreadable = "unreadable"
	SkipReasonCycle      = "symlink-cycle"
	SkipReasonIrregular  = "irregular"
)

// TreeNode represents one included filesystem entry in the filtered tree.
// Path is relative to the scan root in forward-slash form; the root node uses ".".
// Children is populated for directories only and is ordered directories first,
// then files, each group lexicographically by name.
type TreeNode struct {
	Path      string
	Name      string
	Kind      string
	SizeBytes int64
	Children  []*TreeNode
}

// IsDirectory reports whether the node represents a directory.
func (node *TreeNode) IsDirectory() bool {
	return node.Kind == NodeKindDirectory
}

// SkippedPath records a filesystem entry that was dropped during scanning or
// capture together with the reason, so the final artifact stays self-describing.
type SkippedPath struct {
	Path   string
	Reason string
}

// CapturedFile holds the classified, size-bounded content of one included file.
// Content is empty when SkipReason is set or the file is binary.
type CapturedFile struct {
	Path       string
	Encoding   string
	Content    string
	SizeBytes  int64
	Truncated  bool
	SkipReason string
	Tokens     int
}

// Captured reports whether the file body was materialized.
func (file CapturedFile) Captured() bool {
	return file.SkipReason == "" && file.Encoding != EncodingBinary
}

// Configuration is a named, persisted bundle of run parameters. It is owned by
// the configuration store; no other component mutates persisted instances.
type Configuration struct {
	Name            string    `json:"-"`
	TargetDirectory string    `json:"targetDirectory"`
	ProjectName     string    `json:"projectName"`
	OutputFileName  string    `json:"outputFileName"`
	IncludeContent  bool      `json:"includeContent"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// RunSummary aggregates counters for one snapshot run.
type RunSummary struct {
	ProcessedFiles int
	SkippedFiles   int
	ErroredFiles   int
	TotalBytes     int64
	TotalTokens    int
	TokenModel     string
}
