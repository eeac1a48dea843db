package filter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/temirov/promptgen/internal/config"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	directoryPatternSuffix  = "/"
	globMetaCharacters      = "*?["
	errorLoadRuleFileFormat = "loading %s from %s: %w"
)

// IgnoreMatcher decides whether a path is excluded by rules evaluated relative to a base directory.
type IgnoreMatcher interface {
	Matches(absolutePath string, isDirectory bool) bool
}

// NoopMatcher never matches.
type NoopMatcher struct{}

// Matches always reports false.
func (NoopMatcher) Matches(string, bool) bool {
	return false
}

// RuleFileMatcher applies the rules of the project root .gitignore.
type RuleFileMatcher struct {
	baseDirectory string
	rules         *gitignore.GitIgnore
}

// NewRuleFileMatcher parses <baseDirectory>/.gitignore once. A missing file yields a matcher
// without rules; an unreadable file is an error so callers can degrade to NoopMatcher.
func NewRuleFileMatcher(baseDirectory string) (*RuleFileMatcher, error) {
	absoluteBase, absError := filepath.Abs(baseDirectory)
	if absError != nil {
		return nil, fmt.Errorf("abs failed for '%s': %w", baseDirectory, absError)
	}
	rulePatterns, loadError := config.LoadIgnoreFilePatterns(filepath.Join(absoluteBase, utils.GitIgnoreFileName))
	if loadError != nil {
		return nil, fmt.Errorf(errorLoadRuleFileFormat, utils.GitIgnoreFileName, absoluteBase, loadError)
	}
	return &RuleFileMatcher{
		baseDirectory: absoluteBase,
		rules:         gitignore.CompileIgnoreLines(rulePatterns...),
	}, nil
}

// Matches reports whether the rules exclude absolutePath. Paths outside the base never match.
func (matcher *RuleFileMatcher) Matches(absolutePath string, isDirectory bool) bool {
	if matcher == nil || matcher.rules == nil || !utils.IsWithinRoot(absolutePath, matcher.baseDirectory) {
		return false
	}
	relativePath := utils.RelativePathOrSelf(absolutePath, matcher.baseDirectory)
	if relativePath == "." {
		return false
	}
	if isDirectory {
		relativePath += directoryPatternSuffix
	}
	return matcher.rules.MatchesPath(relativePath)
}

// CustomPatternMatcher matches user-supplied globs against basenames and root-relative paths.
// Patterns ending in "/" only match directories and are compared with the root-relative path
// plus "/". A "*" never crosses "/"; use "**/" to match at any depth.
type CustomPatternMatcher struct {
	baseDirectory string
	patterns      []string
}

// NewCustomPatternMatcher returns a matcher for patterns evaluated relative to baseDirectory.
func NewCustomPatternMatcher(baseDirectory string, patterns []string) *CustomPatternMatcher {
	return &CustomPatternMatcher{
		baseDirectory: filepath.Clean(baseDirectory),
		patterns:      utils.DeduplicatePatterns(patterns),
	}
}

// Matches reports whether any pattern matches. Matching is case-sensitive.
func (matcher *CustomPatternMatcher) Matches(absolutePath string, isDirectory bool) bool {
	if matcher == nil || len(matcher.patterns) == 0 || matcher.baseDirectory == "" {
		return false
	}
	baseName := filepath.Base(absolutePath)
	relativePath := utils.RelativePathOrSelf(absolutePath, matcher.baseDirectory)
	for _, pattern := range matcher.patterns {
		if strings.HasSuffix(pattern, directoryPatternSuffix) {
			if !isDirectory {
				continue
			}
			if globMatches(pattern, relativePath+directoryPatternSuffix) {
				return true
			}
			continue
		}
		if globMatches(pattern, baseName) || globMatches(pattern, relativePath) {
			return true
		}
	}
	return false
}

func isGlobPattern(pattern string) bool {
	return strings.ContainsAny(pattern, globMetaCharacters)
}

// globMatches treats malformed patterns as non-matching.
func globMatches(pattern, name string) bool {
	matched, matchError := doublestar.Match(pattern, name)
	return matchError == nil && matched
}

var (
	_ IgnoreMatcher = NoopMatcher{}
	_ IgnoreMatcher = (*RuleFileMatcher)(nil)
	_ IgnoreMatcher = (*CustomPatternMatcher)(nil)
)
