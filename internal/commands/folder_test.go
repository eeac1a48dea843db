package commands_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/promptgen/internal/commands"
	"github.com/temirov/promptgen/internal/filter"
	"github.com/temirov/promptgen/internal/types"
)

func TestCollectFolderFiles(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "b.go"), "b")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "a.go"), "a")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "trace.log"), "x")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, ".env"), "x")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "pkg", "c.go"), "c")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "pkg", "deep", "d.go"), "d")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "node_modules", "e.js"), "e")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "docs", "skip.md"), "s")

	projectContext := types.ProjectContext{
		RootDirectory:     rootDirectory,
		UseDefaultIgnores: true,
		CustomPatterns:    []string{"docs/"},
	}
	pathFilter := filter.NewPathFilter(projectContext, nil)

	flat, flatError := commands.CollectFolderFiles(rootDirectory, pathFilter, false)
	if flatError != nil {
		testingHandle.Fatalf("CollectFolderFiles error: %v", flatError)
	}
	expectedFlat := []string{filepath.Join(rootDirectory, "a.go"), filepath.Join(rootDirectory, "b.go")}
	if !reflect.DeepEqual(flat, expectedFlat) {
		testingHandle.Fatalf("expected %v, got %v", expectedFlat, flat)
	}

	recursive, recursiveError := commands.CollectFolderFiles(rootDirectory, pathFilter, true)
	if recursiveError != nil {
		testingHandle.Fatalf("CollectFolderFiles error: %v", recursiveError)
	}
	expectedRecursive := []string{
		filepath.Join(rootDirectory, "a.go"),
		filepath.Join(rootDirectory, "b.go"),
		filepath.Join(rootDirectory, "pkg", "c.go"),
		filepath.Join(rootDirectory, "pkg", "deep", "d.go"),
	}
	if !reflect.DeepEqual(recursive, expectedRecursive) {
		testingHandle.Fatalf("expected %v, got %v", expectedRecursive, recursive)
	}
}

func TestCollectFolderFilesMissingFolder(testingHandle *testing.T) {
	missing := filepath.Join(testingHandle.TempDir(), "absent")
	if _, collectError := commands.CollectFolderFiles(missing, nil, true); collectError == nil {
		testingHandle.Fatalf("expected an error for a missing folder")
	}
}
