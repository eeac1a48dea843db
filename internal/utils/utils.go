// Package utils contains general helper functions used across promptgen.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// SplitNonEmptyLines splits text into trimmed lines and drops blank ones.
func SplitNonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}
		lines = append(lines, trimmedLine)
	}
	return lines
}

// RelativePathOrSelf calculates the relative path from root to fullPath in forward-slash form.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// IsWithinRoot reports whether absolutePath equals root or lies underneath it.
func IsWithinRoot(absolutePath, root string) bool {
	if root == "" {
		return false
	}
	relativePath, relErr := filepath.Rel(filepath.Clean(root), filepath.Clean(absolutePath))
	if relErr != nil {
		return false
	}
	relativePath = filepath.ToSlash(relativePath)
	return relativePath != ".." && !strings.HasPrefix(relativePath, "../")
}

// DisplayPath renders absolutePath relative to root when it is contained in root,
// otherwise absolute. Separators are always forward slashes.
func DisplayPath(absolutePath, root string) string {
	cleanPath := filepath.Clean(absolutePath)
	if IsWithinRoot(cleanPath, root) {
		relativePath, relErr := filepath.Rel(filepath.Clean(root), cleanPath)
		if relErr == nil {
			return filepath.ToSlash(relativePath)
		}
	}
	return filepath.ToSlash(cleanPath)
}

// AbsolutePaths resolves every path to its cleaned absolute form, preserving order.
func AbsolutePaths(paths []string) ([]string, error) {
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		absolutePath, absError := filepath.Abs(path)
		if absError != nil {
			return nil, fmt.Errorf("abs failed for '%s': %w", path, absError)
		}
		resolved = append(resolved, absolutePath)
	}
	return resolved, nil
}

// IsRegularFile reports whether path exists and is a regular file, following symlinks.
func IsRegularFile(path string) bool {
	fileInformation, statError := os.Stat(path)
	return statError == nil && fileInformation.Mode().IsRegular()
}

// IsDirectory reports whether path exists and is a directory, following symlinks.
func IsDirectory(path string) bool {
	fileInformation, statError := os.Stat(path)
	return statError == nil && fileInformation.IsDir()
}

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0b"
	}
	units := []string{"b", "kb", "mb", "gb", "tb", "pb"}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(units)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%db", bytes)
	}
	if value < 10 {
		return strings.TrimSuffix(fmt.Sprintf("%.1f", value), ".0") + units[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, units[unitIndex])
}

