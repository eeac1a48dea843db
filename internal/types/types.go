// Package types defines the cross-package data structures used by promptgen.
package types

const (
	NodeTypeFile       = "file"
	NodeTypeDirectory  = "directory"
	NodeTypeDiagnostic = "diagnostic"

	FormatRaw  = "raw"
	FormatJSON = "json"
)

// Tree listing failures recorded on diagnostic nodes.
const (
	DiagnosticAccessDenied   = "ACCESS DENIED"
	DiagnosticNotFound       = "NOT FOUND"
	DiagnosticErrorIterating = "ERROR ITERATING"
)

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// ProjectContext is the filtering state of the currently open project.
type ProjectContext struct {
	// RootDirectory is empty when no project is open.
	RootDirectory     string
	UseIgnoreRules    bool
	UseDefaultIgnores bool
	CustomPatterns    []string
}

// HasProject reports whether a project root is set.
func (projectContext ProjectContext) HasProject() bool {
	return projectContext.RootDirectory != ""
}

// Clone returns a copy that shares no mutable state with the receiver.
func (projectContext ProjectContext) Clone() ProjectContext {
	cloned := projectContext
	cloned.CustomPatterns = append([]string(nil), projectContext.CustomPatterns...)
	return cloned
}

// TreeNode is one entry of a filtered directory listing.
// Diagnostic nodes carry a listing failure for the directory named by Name.
type TreeNode struct {
	Path             string      `json:"path"`
	Name             string      `json:"name"`
	Type             string      `json:"type"`
	Size             string      `json:"size,omitempty"`
	SizeBytes        int64       `json:"-"`
	Diagnostic       string      `json:"diagnostic,omitempty"`
	DiagnosticDetail string      `json:"detail,omitempty"`
	Children         []*TreeNode `json:"children,omitempty"`
}

// IsDirectory reports whether the node represents a directory.
func (node *TreeNode) IsDirectory() bool {
	return node != nil && node.Type == NodeTypeDirectory
}
