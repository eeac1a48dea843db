// Package commands contains the traversal, aggregation and assembly steps of the prompt pipeline.
package commands

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/promptgen/internal/filter"
	"github.com/temirov/promptgen/internal/output"
	"github.com/temirov/promptgen/internal/types"
	"github.com/temirov/promptgen/internal/utils"
)

// EmptyTreeSentinel is the tree text for an empty or fully filtered root.
const EmptyTreeSentinel = "(No files to display or all ignored)"

// TreeBuilder lists a directory recursively through a PathFilter.
type TreeBuilder struct {
	Filter *filter.PathFilter
}

// NewTreeBuilder returns a builder using pathFilter for every entry.
func NewTreeBuilder(pathFilter *filter.PathFilter) *TreeBuilder {
	return &TreeBuilder{Filter: pathFilter}
}

// RenderTree is a convenience for NewTreeBuilder(pathFilter).RenderText(rootDirectoryPath).
func RenderTree(rootDirectoryPath string, pathFilter *filter.PathFilter) string {
	return NewTreeBuilder(pathFilter).RenderText(rootDirectoryPath)
}

// RenderText renders the visible contents of rootDirectoryPath, or EmptyTreeSentinel.
func (treeBuilder *TreeBuilder) RenderText(rootDirectoryPath string) string {
	rendered := output.RenderTreeText(treeBuilder.BuildNodes(rootDirectoryPath))
	if rendered == "" {
		return EmptyTreeSentinel
	}
	return rendered
}

// BuildNodes returns the visible children of rootDirectoryPath. Listing failures become
// diagnostic nodes in place of the failed subtree; they never abort the walk.
func (treeBuilder *TreeBuilder) BuildNodes(rootDirectoryPath string) []*types.TreeNode {
	absoluteRootDirPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return []*types.TreeNode{newDiagnosticNode(rootDirectoryPath, absolutePathError)}
	}
	ancestry := map[string]struct{}{resolvedPath(absoluteRootDirPath): {}}
	return treeBuilder.buildTreeNodes(absoluteRootDirPath, ancestry)
}

func (treeBuilder *TreeBuilder) buildTreeNodes(currentDirectoryPath string, ancestry map[string]struct{}) []*types.TreeNode {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return []*types.TreeNode{newDiagnosticNode(currentDirectoryPath, readDirectoryError)}
	}

	var nodes []*types.TreeNode
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(currentDirectoryPath, directoryEntry.Name())
		entryInfo, statError := os.Stat(childPath)
		if statError != nil {
			continue
		}
		isDirectory := entryInfo.IsDir()
		if treeBuilder.Filter != nil && !treeBuilder.Filter.IsVisible(childPath, isDirectory) {
			continue
		}
		node := &types.TreeNode{
			Path: childPath,
			Name: directoryEntry.Name(),
			Type: types.NodeTypeFile,
		}
		if isDirectory {
			node.Type = types.NodeTypeDirectory
		} else {
			node.SizeBytes = entryInfo.Size()
			node.Size = utils.FormatFileSize(entryInfo.Size())
		}
		nodes = append(nodes, node)
	}

	sortTreeNodes(nodes)

	for _, node := range nodes {
		if !node.IsDirectory() {
			continue
		}
		resolvedChildPath := resolvedPath(node.Path)
		if _, cyclic := ancestry[resolvedChildPath]; cyclic {
			continue
		}
		ancestry[resolvedChildPath] = struct{}{}
		node.Children = treeBuilder.buildTreeNodes(node.Path, ancestry)
		delete(ancestry, resolvedChildPath)
	}
	return nodes
}

// sortTreeNodes orders directories before files, then by case-insensitive name, then by name.
func sortTreeNodes(nodes []*types.TreeNode) {
	sort.SliceStable(nodes, func(leftIndex, rightIndex int) bool {
		left, right := nodes[leftIndex], nodes[rightIndex]
		if left.IsDirectory() != right.IsDirectory() {
			return left.IsDirectory()
		}
		leftLower, rightLower := strings.ToLower(left.Name), strings.ToLower(right.Name)
		if leftLower != rightLower {
			return leftLower < rightLower
		}
		return left.Name < right.Name
	})
}

func newDiagnosticNode(directoryPath string, listingError error) *types.TreeNode {
	node := &types.TreeNode{
		Path: directoryPath,
		Name: filepath.Base(directoryPath),
		Type: types.NodeTypeDiagnostic,
	}
	switch {
	case errors.Is(listingError, fs.ErrPermission):
		node.Diagnostic = types.DiagnosticAccessDenied
	case errors.Is(listingError, fs.ErrNotExist):
		node.Diagnostic = types.DiagnosticNotFound
	default:
		node.Diagnostic = types.DiagnosticErrorIterating
		node.DiagnosticDetail = listingError.Error()
	}
	return node
}

func resolvedPath(path string) string {
	if resolved, resolveError := filepath.EvalSymlinks(path); resolveError == nil {
		return resolved
	}
	return filepath.Clean(path)
}
