// Package render turns scan and capture results into the markdown artifact and
// the terminal tree preview.
package render

import (
	"bytes"

	"github.com/snapgrab/snapgrab/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix = "/"
)

// RenderTree renders the filtered tree with box-drawing connectors. The walk
// preserves the scanner's ordering, so rendering is deterministic.
func RenderTree(rootNode *types.TreeNode) string {
	var buffer bytes.Buffer
	if rootNode == nil {
		return buffer.String()
	}
	buffer.WriteString(rootNode.Name)
	if rootNode.IsDirectory() {
		buffer.WriteString(directorySuffix)
	}
	buffer.WriteString("\n")
	renderChildren(&buffer, rootNode.Children, "")
	return buffer.String()
}

func renderChildren(buffer *bytes.Buffer, childNodes []*types.TreeNode, linePrefix string) {
	for childIndex, childNode := range childNodes {
		isLastChild := childIndex == len(childNodes)-1

		connector := treeBranchConnector
		childPadding := treeBranchPadding
		if isLastChild {
			connector = treeLastConnector
			childPadding = treeLastPadding
		}

		buffer.WriteString(linePrefix)
		buffer.WriteString(connector)
		buffer.WriteString(childNode.Name)
		if childNode.IsDirectory() {
			buffer.WriteString(directorySuffix)
		}
		buffer.WriteString("\n")

		if childNode.IsDirectory() {
			renderChildren(buffer, childNode.Children, linePrefix+childPadding)
		}
	}
}
