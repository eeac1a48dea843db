package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/promptgen/internal/config"
)

func TestLoadIgnoreFilePatterns(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	ignoreFilePath := filepath.Join(temporaryDirectory, ".gitignore")
	content := "# comment\n\n*.log\n  build/  \n#another\nsecret.txt\n"
	if writeError := os.WriteFile(ignoreFilePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("write ignore file: %v", writeError)
	}

	patterns, loadError := config.LoadIgnoreFilePatterns(ignoreFilePath)
	if loadError != nil {
		testingHandle.Fatalf("LoadIgnoreFilePatterns error: %v", loadError)
	}
	expected := []string{"*.log", "build/", "secret.txt"}
	if !reflect.DeepEqual(patterns, expected) {
		testingHandle.Fatalf("expected %v, got %v", expected, patterns)
	}
}

func TestLoadIgnoreFilePatternsMissingFile(testingHandle *testing.T) {
	patterns, loadError := config.LoadIgnoreFilePatterns(filepath.Join(testingHandle.TempDir(), "absent"))
	if loadError != nil {
		testingHandle.Fatalf("expected no error for a missing file, got %v", loadError)
	}
	if len(patterns) != 0 {
		testingHandle.Fatalf("expected no patterns, got %v", patterns)
	}
}

func TestLoadIgnoreFilePatternsDirectory(testingHandle *testing.T) {
	if _, loadError := config.LoadIgnoreFilePatterns(testingHandle.TempDir()); loadError == nil {
		testingHandle.Fatalf("expected an error when the rule file is a directory")
	}
}

func TestParseCustomPatterns(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected []string
	}{
		{name: "empty", text: "", expected: []string{}},
		{name: "blank_lines", text: "\n  \n\t\n", expected: []string{}},
		{name: "trimmed", text: "  *.log\n\ncache/ \n", expected: []string{"*.log", "cache/"}},
		{name: "duplicates", text: "*.tmp\n*.tmp\n", expected: []string{"*.tmp"}},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			if result := config.ParseCustomPatterns(testCase.text); !reflect.DeepEqual(result, testCase.expected) {
				subTest.Fatalf("expected %v, got %v", testCase.expected, result)
			}
		})
	}
}
