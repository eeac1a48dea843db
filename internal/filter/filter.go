// Package filter decides which project entries are visible in listings and folder imports.
package filter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/promptgen/internal/types"
)

const (
	hiddenEntryPrefix = "."

	// FilterNameIgnoreRules is reported when the project .gitignore participates in filtering.
	FilterNameIgnoreRules = ".gitignore active"
	// FilterNameCustomPatterns is reported when custom patterns are configured.
	FilterNameCustomPatterns = "custom ignores active"
	// FilterNameDefaultIgnores is reported when the built-in name sets apply.
	FilterNameDefaultIgnores = "default ignores active"
)

// PathFilter applies, in order, the external matcher, custom patterns, the built-in
// name sets and the dotfile convention. The first exclusion wins.
type PathFilter struct {
	projectContext  types.ProjectContext
	externalMatcher IgnoreMatcher
	customMatcher   *CustomPatternMatcher
}

// NewPathFilter snapshots projectContext. externalMatcher may be nil.
func NewPathFilter(projectContext types.ProjectContext, externalMatcher IgnoreMatcher) *PathFilter {
	snapshot := projectContext.Clone()
	if snapshot.RootDirectory != "" {
		snapshot.RootDirectory = filepath.Clean(snapshot.RootDirectory)
	}
	pathFilter := &PathFilter{
		projectContext:  snapshot,
		externalMatcher: externalMatcher,
	}
	if snapshot.HasProject() && len(snapshot.CustomPatterns) > 0 {
		pathFilter.customMatcher = NewCustomPatternMatcher(snapshot.RootDirectory, snapshot.CustomPatterns)
	}
	return pathFilter
}

// ProjectContext returns the snapshot the filter was built from.
func (pathFilter *PathFilter) ProjectContext() types.ProjectContext {
	return pathFilter.projectContext.Clone()
}

// IsVisible reports whether an entry whose type is already known should be shown.
func (pathFilter *PathFilter) IsVisible(entryPath string, isDirectory bool) bool {
	if pathFilter.projectContext.UseIgnoreRules && pathFilter.externalMatcher != nil &&
		pathFilter.externalMatcher.Matches(entryPath, isDirectory) {
		return false
	}
	if pathFilter.customMatcher != nil && pathFilter.customMatcher.Matches(entryPath, isDirectory) {
		return false
	}
	if !pathFilter.projectContext.UseDefaultIgnores {
		return true
	}
	entryName := filepath.Base(entryPath)
	if isDirectory {
		if defaultDirectorySet.contains(entryName) {
			return false
		}
		if _, allowed := visibleDotDirectories[entryName]; !allowed && strings.HasPrefix(entryName, hiddenEntryPrefix) {
			return false
		}
		return true
	}
	if defaultFileSet.contains(entryName) {
		return false
	}
	if _, allowed := visibleDotFiles[entryName]; !allowed && strings.HasPrefix(entryName, hiddenEntryPrefix) {
		return false
	}
	return true
}

// Probe stats entryPath, following symlinks, and applies IsVisible. ok is false when the
// type probe fails, in which case the entry must be skipped.
func (pathFilter *PathFilter) Probe(entryPath string) (visible bool, isDirectory bool, ok bool) {
	fileInformation, statError := os.Stat(entryPath)
	if statError != nil {
		return false, false, false
	}
	isDirectory = fileInformation.IsDir()
	return pathFilter.IsVisible(entryPath, isDirectory), isDirectory, true
}

// ActiveFilterNames lists the filters that participate in visibility decisions.
func (pathFilter *PathFilter) ActiveFilterNames() []string {
	var names []string
	if pathFilter.projectContext.UseIgnoreRules && pathFilter.externalMatcher != nil {
		names = append(names, FilterNameIgnoreRules)
	}
	if len(pathFilter.projectContext.CustomPatterns) > 0 {
		names = append(names, FilterNameCustomPatterns)
	}
	if pathFilter.projectContext.UseDefaultIgnores {
		names = append(names, FilterNameDefaultIgnores)
	}
	return names
}
