// Package output renders directory listings as connector text or JSON.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/temirov/promptgen/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directoryNameSuffix        = "/"
	diagnosticLineFormat       = "%s[%s] %s\n"
	diagnosticDetailLineFormat = "%s[%s] %s: %s\n"
)

// RenderTreeText renders nodes as connector lines without a root line.
// The result carries no trailing newline; an empty slice renders as "".
func RenderTreeText(nodes []*types.TreeNode) string {
	var buffer bytes.Buffer
	renderTreeNodes(&buffer, nodes, indentPrefix)
	return string(bytes.TrimSuffix(buffer.Bytes(), []byte("\n")))
}

// RenderTreeJSON marshals nodes as an indented JSON array.
func RenderTreeJSON(nodes []*types.TreeNode) (string, error) {
	if nodes == nil {
		nodes = []*types.TreeNode{}
	}
	encoded, jsonEncodeError := json.MarshalIndent(nodes, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

func treeNodeLinePrefix(prefix string, isLast bool) (string, string) {
	if isLast {
		return prefix + treeLastConnector, prefix + treeLastPadding
	}
	return prefix + treeBranchConnector, prefix + treeBranchPadding
}

func renderTreeNodes(writer io.Writer, nodes []*types.TreeNode, prefix string) {
	for index, node := range nodes {
		if node == nil {
			continue
		}
		if node.Type == types.NodeTypeDiagnostic {
			renderDiagnostic(writer, node, prefix)
			continue
		}
		linePrefix, childPrefix := treeNodeLinePrefix(prefix, index == len(nodes)-1)
		if node.IsDirectory() {
			fmt.Fprintf(writer, "%s%s%s\n", linePrefix, node.Name, directoryNameSuffix)
			renderTreeNodes(writer, node.Children, childPrefix)
			continue
		}
		fmt.Fprintf(writer, "%s%s\n", linePrefix, node.Name)
	}
}

// renderDiagnostic writes a listing failure at the indent its children would have used.
func renderDiagnostic(writer io.Writer, node *types.TreeNode, prefix string) {
	if node.DiagnosticDetail != "" {
		fmt.Fprintf(writer, diagnosticDetailLineFormat, prefix, node.Diagnostic, node.Name, node.DiagnosticDetail)
		return
	}
	fmt.Fprintf(writer, diagnosticLineFormat, prefix, node.Diagnostic, node.Name)
}
