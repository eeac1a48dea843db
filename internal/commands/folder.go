package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/promptgen/internal/filter"
)

const errorReadFolderFormat = "reading folder %s: %w"

// CollectFolderFiles returns the absolute paths of visible regular files in folderPath.
// When recursive is true, visible subdirectories are walked as well; symlinked directories
// are listed by the filter but not descended into, and unreadable subdirectories are skipped.
// Only a failure to list folderPath itself is returned as an error.
func CollectFolderFiles(folderPath string, pathFilter *filter.PathFilter, recursive bool) ([]string, error) {
	absoluteFolderPath, absolutePathError := filepath.Abs(folderPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf("abs failed for '%s': %w", folderPath, absolutePathError)
	}
	directoryEntries, readDirectoryError := os.ReadDir(absoluteFolderPath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadFolderFormat, absoluteFolderPath, readDirectoryError)
	}
	return collectEntries(absoluteFolderPath, directoryEntries, pathFilter, recursive), nil
}

func collectEntries(directoryPath string, directoryEntries []fs.DirEntry, pathFilter *filter.PathFilter, recursive bool) []string {
	var collected []string
	var subdirectories []string
	for _, directoryEntry := range directoryEntries {
		entryPath := filepath.Join(directoryPath, directoryEntry.Name())
		entryInfo, statError := os.Stat(entryPath)
		if statError != nil {
			continue
		}
		if entryInfo.IsDir() {
			if recursive && directoryEntry.Type()&fs.ModeSymlink == 0 && isVisible(pathFilter, entryPath, true) {
				subdirectories = append(subdirectories, entryPath)
			}
			continue
		}
		if !entryInfo.Mode().IsRegular() || !isVisible(pathFilter, entryPath, false) {
			continue
		}
		collected = append(collected, entryPath)
	}
	for _, subdirectoryPath := range subdirectories {
		nestedEntries, readDirectoryError := os.ReadDir(subdirectoryPath)
		if readDirectoryError != nil {
			continue
		}
		collected = append(collected, collectEntries(subdirectoryPath, nestedEntries, pathFilter, recursive)...)
	}
	return collected
}

func isVisible(pathFilter *filter.PathFilter, entryPath string, isDirectory bool) bool {
	return pathFilter == nil || pathFilter.IsVisible(entryPath, isDirectory)
}
