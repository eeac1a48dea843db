// Package config loads ignore rule files, application configuration and saved profiles.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/temirov/promptgen/internal/utils"
)

const (
	commentPrefix             = "#"
	warningCloseFileFormat    = "Warning: failed to close %s: %v\n"
	errorReadIgnoreFileFormat = "reading %s: %w"
)

// LoadIgnoreFilePatterns reads an ignore rule file and returns its non-blank, non-comment lines.
// A missing file yields no patterns and no error.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorReadIgnoreFileFormat, ignoreFilePath, openFileError)
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, warningCloseFileFormat, ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorReadIgnoreFileFormat, ignoreFilePath, scanError)
	}
	return ignorePatterns, nil
}

// ParseCustomPatterns turns free text into a pattern list: one pattern per line,
// trimmed, blank lines and duplicates dropped.
func ParseCustomPatterns(text string) []string {
	return utils.DeduplicatePatterns(utils.SplitNonEmptyLines(text))
}
