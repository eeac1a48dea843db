package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/promptgen/internal/types"
)

const (
	testMainFileName     = "main.go"
	testMainFileContent  = "package main\n"
	testReadmeFileName   = "README.md"
	testSecretFileName   = "secret.txt"
	testInternalFileName = "a.go"
	testInstructions     = "Review the error handling"
)

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

type commandResult struct {
	stdout string
	stderr string
	err    error
}

// setupProject isolates configuration lookups and returns a project root that is also the
// working directory.
func setupProject(testingHandle *testing.T) string {
	testingHandle.Helper()
	homeDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", homeDirectory)
	testingHandle.Setenv("USERPROFILE", homeDirectory)
	testingHandle.Setenv("PROMPTGEN_PROFILES_DIRECTORY", filepath.Join(homeDirectory, "profiles"))
	testingHandle.Setenv("PROMPTGEN_TOKENS_MODEL", "")
	testingHandle.Setenv("PROMPTGEN_WORKERS", "")

	projectRoot := testingHandle.TempDir()
	files := map[string]string{
		testMainFileName:                                testMainFileContent,
		testReadmeFileName:                              "# demo\n",
		testSecretFileName:                              "token\n",
		".gitignore":                                    testSecretFileName + "\n",
		filepath.Join("internal", testInternalFileName): "package internal\n",
		filepath.Join("internal", "nested", "b.go"):     "package nested\n",
	}
	for relativePath, content := range files {
		absolutePath := filepath.Join(projectRoot, relativePath)
		if err := os.MkdirAll(filepath.Dir(absolutePath), 0o755); err != nil {
			testingHandle.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(absolutePath, []byte(content), 0o644); err != nil {
			testingHandle.Fatalf("write %s: %v", relativePath, err)
		}
	}
	originalDirectory, err := os.Getwd()
	if err != nil {
		testingHandle.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(projectRoot); err != nil {
		testingHandle.Fatalf("chdir: %v", err)
	}
	testingHandle.Cleanup(func() { _ = os.Chdir(originalDirectory) })
	return projectRoot
}

func runRoot(copier *recordingCopier, arguments ...string) commandResult {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	options := Options{Stdout: &stdout, Stderr: &stderr}
	if copier != nil {
		options.Copier = copier
	} else {
		options.Copier = &recordingCopier{}
	}
	rootCommand := NewRootCommand(options)
	rootCommand.SetArgs(arguments)
	err := rootCommand.Execute()
	return commandResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestVersionFlagPrintsVersion(testingHandle *testing.T) {
	setupProject(testingHandle)
	result := runRoot(nil, "--version")
	if result.err != nil {
		testingHandle.Fatalf("unexpected error: %v", result.err)
	}
	if !strings.HasPrefix(result.stdout, "promptgen version: ") {
		testingHandle.Fatalf("unexpected version output %q", result.stdout)
	}
}

func TestTreeCommandHonorsFilters(testingHandle *testing.T) {
	projectRoot := setupProject(testingHandle)

	testCases := []struct {
		name        string
		arguments   []string
		contains    []string
		notContains []string
	}{
		{
			name:        "defaults and gitignore",
			arguments:   []string{"tree", projectRoot},
			contains:    []string{testMainFileName, testReadmeFileName, "internal/", "nested/"},
			notContains: []string{testSecretFileName, ".gitignore"},
		},
		{
			name:        "gitignore disabled",
			arguments:   []string{"tree", "--gitignore=false", projectRoot},
			contains:    []string{testSecretFileName},
			notContains: []string{".gitignore"},
		},
		{
			name:        "defaults disabled shows dotfiles",
			arguments:   []string{"tree", "--defaults=false", projectRoot},
			contains:    []string{".gitignore"},
			notContains: []string{testSecretFileName},
		},
		{
			name:        "custom directory pattern",
			arguments:   []string{"tree", "-e", "internal/", projectRoot},
			contains:    []string{testMainFileName},
			notContains: []string{"internal/", "nested/"},
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingInstance *testing.T) {
			result := runRoot(nil, testCase.arguments...)
			if result.err != nil {
				testingInstance.Fatalf("unexpected error: %v", result.err)
			}
			for _, expected := range testCase.contains {
				if !strings.Contains(result.stdout, expected) {
					testingInstance.Fatalf("expected %q in tree:\n%s", expected, result.stdout)
				}
			}
			for _, unexpected := range testCase.notContains {
				if strings.Contains(result.stdout, unexpected) {
					testingInstance.Fatalf("did not expect %q in tree:\n%s", unexpected, result.stdout)
				}
			}
		})
	}
}

func TestTreeCommandJSONFormat(testingHandle *testing.T) {
	projectRoot := setupProject(testingHandle)
	result := runRoot(nil, "tree", "--format", "json", projectRoot)
	if result.err != nil {
		testingHandle.Fatalf("unexpected error: %v", result.err)
	}
	var nodes []*types.TreeNode
	if err := json.Unmarshal([]byte(result.stdout), &nodes); err != nil {
		testingHandle.Fatalf("decode tree json: %v\n%s", err, result.stdout)
	}
	names := map[string]bool{}
	for _, node := range nodes {
		names[node.Name] = true
	}
	if !names[testMainFileName] || !names["internal"] || names[testSecretFileName] {
		testingHandle.Fatalf("unexpected top-level nodes %v", names)
	}
}

func TestTreeCommandRejectsInvalidInput(testingHandle *testing.T) {
	projectRoot := setupProject(testingHandle)
	if result := runRoot(nil, "tree", "--format", "xml", projectRoot); result.err == nil {
		testingHandle.Fatalf("expected error for unknown format")
	}
	if result := runRoot(nil, "tree", filepath.Join(projectRoot, testMainFileName)); result.err == nil {
		testingHandle.Fatalf("expected error for a file argument")
	}
}

func TestFilesCommandListsFolderFiles(testingHandle *testing.T) {
	projectRoot := setupProject(testingHandle)

	flat := runRoot(nil, "files", "internal")
	if flat.err != nil {
		testingHandle.Fatalf("unexpected error: %v", flat.err)
	}
	if flat.stdout != "internal/a.go\n" {
		testingHandle.Fatalf("unexpected flat listing %q", flat.stdout)
	}

	recursive := runRoot(nil, "files", "--recursive", "--project", projectRoot, filepath.Join(projectRoot, "internal"))
	if recursive.err != nil {
		testingHandle.Fatalf("unexpected error: %v", recursive.err)
	}
	if !strings.Contains(recursive.stdout, "internal/a.go") || !strings.Contains(recursive.stdout, "internal/nested/b.go") {
		testingHandle.Fatalf("unexpected recursive listing %q", recursive.stdout)
	}
}

func TestPromptCommandAssemblesSections(testingHandle *testing.T) {
	projectRoot := setupProject(testingHandle)
	result := runRoot(nil, "prompt", "-i", testInstructions, "--file", testMainFileName)
	if result.err != nil {
		testingHandle.Fatalf("unexpected error: %v", result.err)
	}
	expectedFragments := []string{
		"--- INSTRUCTIONS ---\n" + testInstructions,
		"--- PROJECT CONTEXT: " + filepath.Base(projectRoot) + " ---",
		"--- MAIN FILE(S) CONTENT ---",
		"--- File: main.go ---",
		strings.TrimSpace(testMainFileContent),
	}
	for _, fragment := range expectedFragments {
		if !strings.Contains(result.stdout, fragment) {
			testingHandle.Fatalf("expected %q in prompt:\n%s", fragment, result.stdout)
		}
	}
	if strings.Contains(result.stdout, testSecretFileName) {
		testingHandle.Fatalf("ignored file leaked into prompt:\n%s", result.stdout)
	}
	if strings.Index(result.stdout, "--- INSTRUCTIONS ---") > strings.Index(result.stdout, "--- MAIN FILE(S) CONTENT ---") {
		testingHandle.Fatalf("sections out of order:\n%s", result.stdout)
	}
}

func TestPromptCommandAddsFolders(testingHandle *testing.T) {
	setupProject(testingHandle)
	result := runRoot(nil, "prompt", "--folder", "internal", "--recursive")
	if result.err != nil {
		testingHandle.Fatalf("unexpected error: %v", result.err)
	}
	for _, fragment := range []string{"--- File: internal/a.go ---", "--- File: internal/nested/b.go ---"} {
		if !strings.Contains(result.stdout, fragment) {
			testingHandle.Fatalf("expected %q in prompt:\n%s", fragment, result.stdout)
		}
	}
	if missing := runRoot(nil, "prompt", "--folder", "missing"); missing.err == nil {
		testingHandle.Fatalf("expected error for a missing folder")
	}
}

func TestPromptCommandWithoutMainFiles(testingHandle *testing.T) {
	setupProject(testingHandle)
	result := runRoot(nil, "prompt")
	if result.err != nil {
		testingHandle.Fatalf("unexpected error: %v", result.err)
	}
	if !strings.Contains(result.stdout, "(No main files added to the list.)") {
		testingHandle.Fatalf("expected main files sentinel:\n%s", result.stdout)
	}
	if strings.Contains(result.stdout, "--- INSTRUCTIONS ---") {
		testingHandle.Fatalf("did not expect an instructions section:\n%s", result.stdout)
	}
}

func TestPromptCommandWritesOutputAndCopies(testingHandle *testing.T) {
	setupProject(testingHandle)
	outputPath := filepath.Join(testingHandle.TempDir(), "prompt.txt")
	copier := &recordingCopier{}

	result := runRoot(copier, "prompt", "--file", testMainFileName, "--output", outputPath, "--copy")
	if result.err != nil {
		testingHandle.Fatalf("unexpected error: %v", result.err)
	}
	if result.stdout != "" {
		testingHandle.Fatalf("expected no stdout when writing to a file, got %q", result.stdout)
	}
	written, readError := os.ReadFile(outputPath)
	if readError != nil {
		testingHandle.Fatalf("read output: %v", readError)
	}
	if !strings.Contains(string(written), "--- File: main.go ---") {
		testingHandle.Fatalf("unexpected output file:\n%s", written)
	}
	if len(copier.copied) != 1 || copier.copied[0]+"\n" != string(written) {
		testingHandle.Fatalf("expected the written prompt to be copied once, got %d copies", len(copier.copied))
	}
}

func TestPromptCommandReadsInstructionsFile(testingHandle *testing.T) {
	setupProject(testingHandle)
	instructionsPath := filepath.Join(testingHandle.TempDir(), "instructions.md")
	if err := os.WriteFile(instructionsPath, []byte("From a file\n"), 0o644); err != nil {
		testingHandle.Fatalf("write instructions: %v", err)
	}
	result := runRoot(nil, "prompt", "--instructions-file", instructionsPath)
	if result.err != nil {
		testingHandle.Fatalf("unexpected error: %v", result.err)
	}
	if !strings.Contains(result.stdout, "--- INSTRUCTIONS ---\nFrom a file") {
		testingHandle.Fatalf("expected instructions from file:\n%s", result.stdout)
	}
}

func TestProfileLifecycle(testingHandle *testing.T) {
	projectRoot := setupProject(testingHandle)

	saved := runRoot(nil, "profile", "save", "backend", projectRoot, "-i", testInstructions, "--file", testMainFileName, "-e", "*.md")
	if saved.err != nil {
		testingHandle.Fatalf("save: %v", saved.err)
	}
	if !strings.HasPrefix(saved.stdout, "Saved profile backend to ") {
		testingHandle.Fatalf("unexpected save output %q", saved.stdout)
	}

	listed := runRoot(nil, "profile", "list")
	if listed.err != nil || listed.stdout != "backend\n" {
		testingHandle.Fatalf("unexpected list output %q (%v)", listed.stdout, listed.err)
	}

	shown := runRoot(nil, "profile", "show", "backend")
	if shown.err != nil {
		testingHandle.Fatalf("show: %v", shown.err)
	}
	for _, fragment := range []string{
		"instructions: " + testInstructions,
		"project_folder: " + projectRoot,
		"  - *.md",
		"  - " + filepath.Join(projectRoot, testMainFileName),
	} {
		if !strings.Contains(shown.stdout, fragment) {
			testingHandle.Fatalf("expected %q in profile:\n%s", fragment, shown.stdout)
		}
	}

	fromProfile := runRoot(nil, "prompt", "--profile", "backend")
	if fromProfile.err != nil {
		testingHandle.Fatalf("prompt from profile: %v", fromProfile.err)
	}
	if !strings.Contains(fromProfile.stdout, testInstructions) || !strings.Contains(fromProfile.stdout, "--- File: main.go ---") {
		testingHandle.Fatalf("profile settings not applied:\n%s", fromProfile.stdout)
	}
	if strings.Contains(fromProfile.stdout, testReadmeFileName) {
		testingHandle.Fatalf("profile custom ignore not applied:\n%s", fromProfile.stdout)
	}

	deleted := runRoot(nil, "profile", "delete", "backend")
	if deleted.err != nil {
		testingHandle.Fatalf("delete: %v", deleted.err)
	}
	if emptied := runRoot(nil, "profile", "list"); emptied.stdout != "" {
		testingHandle.Fatalf("expected no profiles after delete, got %q", emptied.stdout)
	}
	if missing := runRoot(nil, "profile", "show", "backend"); missing.err == nil {
		testingHandle.Fatalf("expected error for a deleted profile")
	}
}

func TestProfileSaveRejectsInvalidName(testingHandle *testing.T) {
	setupProject(testingHandle)
	if result := runRoot(nil, "profile", "save", "bad name"); result.err == nil {
		testingHandle.Fatalf("expected error for an invalid profile name")
	}
}

func TestConfigInitWritesLocalFile(testingHandle *testing.T) {
	projectRoot := setupProject(testingHandle)
	result := runRoot(nil, "config", "init")
	if result.err != nil {
		testingHandle.Fatalf("config init: %v", result.err)
	}
	expectedPath := filepath.Join(projectRoot, ".promptgen.yaml")
	if !strings.Contains(result.stdout, expectedPath) {
		testingHandle.Fatalf("unexpected output %q", result.stdout)
	}
	if _, statError := os.Stat(expectedPath); statError != nil {
		testingHandle.Fatalf("expected configuration file: %v", statError)
	}
	if again := runRoot(nil, "config", "init"); again.err == nil {
		testingHandle.Fatalf("expected error without --force")
	}
	if forced := runRoot(nil, "config", "init", "--force"); forced.err != nil {
		testingHandle.Fatalf("forced init: %v", forced.err)
	}
	if loaded := runRoot(nil, "tree"); loaded.err != nil {
		testingHandle.Fatalf("tree with initialized configuration: %v", loaded.err)
	}
}
