package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/promptgen/internal/commands"
	"github.com/temirov/promptgen/internal/filter"
	"github.com/temirov/promptgen/internal/types"
)

func writeTestFile(testingHandle *testing.T, path string, content string) {
	testingHandle.Helper()
	if mkdirError := os.MkdirAll(filepath.Dir(path), 0o755); mkdirError != nil {
		testingHandle.Fatalf("mkdir %s: %v", filepath.Dir(path), mkdirError)
	}
	if writeError := os.WriteFile(path, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("write %s: %v", path, writeError)
	}
}

func defaultFilter(rootDirectory string) *filter.PathFilter {
	return filter.NewPathFilter(types.ProjectContext{RootDirectory: rootDirectory, UseDefaultIgnores: true}, nil)
}

func TestRenderTreeOrdersAndFilters(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "b_dir", "z.txt"), "z")
	if mkdirError := os.MkdirAll(filepath.Join(rootDirectory, "A_dir"), 0o755); mkdirError != nil {
		testingHandle.Fatalf("mkdir: %v", mkdirError)
	}
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "a.txt"), "a")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "B.txt"), "b")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "node_modules", "x.js"), "x")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, ".env"), "SECRET=1")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, ".gitignore"), "")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "debug.log"), "log")

	expected := strings.Join([]string{
		"├── A_dir/",
		"├── b_dir/",
		"│   └── z.txt",
		"├── .gitignore",
		"├── a.txt",
		"└── B.txt",
	}, "\n")
	if rendered := commands.RenderTree(rootDirectory, defaultFilter(rootDirectory)); rendered != expected {
		testingHandle.Fatalf("unexpected tree:\n%s\nexpected:\n%s", rendered, expected)
	}
}

func TestRenderTreeEmptyRoots(testingHandle *testing.T) {
	emptyRoot := testingHandle.TempDir()
	if rendered := commands.RenderTree(emptyRoot, defaultFilter(emptyRoot)); rendered != commands.EmptyTreeSentinel {
		testingHandle.Fatalf("expected sentinel for empty root, got %q", rendered)
	}

	filteredRoot := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(filteredRoot, "node_modules", "index.js"), "x")
	writeTestFile(testingHandle, filepath.Join(filteredRoot, ".DS_Store"), "x")
	if rendered := commands.RenderTree(filteredRoot, defaultFilter(filteredRoot)); rendered != commands.EmptyTreeSentinel {
		testingHandle.Fatalf("expected sentinel for fully filtered root, got %q", rendered)
	}
}

func TestRenderTreeMissingRoot(testingHandle *testing.T) {
	missingRoot := filepath.Join(testingHandle.TempDir(), "gone")
	expected := "[NOT FOUND] gone"
	if rendered := commands.RenderTree(missingRoot, defaultFilter(missingRoot)); rendered != expected {
		testingHandle.Fatalf("expected %q, got %q", expected, rendered)
	}
}

func TestRenderTreeAccessDeniedContinues(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("permission checks do not apply to root")
	}
	rootDirectory := testingHandle.TempDir()
	lockedDirectory := filepath.Join(rootDirectory, "locked")
	writeTestFile(testingHandle, filepath.Join(lockedDirectory, "hidden.txt"), "x")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "open", "visible.txt"), "x")
	if chmodError := os.Chmod(lockedDirectory, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod: %v", chmodError)
	}
	testingHandle.Cleanup(func() {
		_ = os.Chmod(lockedDirectory, 0o755)
	})

	expected := strings.Join([]string{
		"├── locked/",
		"│   [ACCESS DENIED] locked",
		"└── open/",
		"    └── visible.txt",
	}, "\n")
	if rendered := commands.RenderTree(rootDirectory, defaultFilter(rootDirectory)); rendered != expected {
		testingHandle.Fatalf("unexpected tree:\n%s\nexpected:\n%s", rendered, expected)
	}
}

func TestRenderTreeSymlinkCycle(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "dir", "file.txt"), "x")
	if symlinkError := os.Symlink(rootDirectory, filepath.Join(rootDirectory, "dir", "loop")); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}

	expected := strings.Join([]string{
		"└── dir/",
		"    ├── loop/",
		"    └── file.txt",
	}, "\n")
	if rendered := commands.RenderTree(rootDirectory, defaultFilter(rootDirectory)); rendered != expected {
		testingHandle.Fatalf("unexpected tree:\n%s\nexpected:\n%s", rendered, expected)
	}
}

func TestRenderTreeHonorsRuleFile(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, ".gitignore"), "generated/\n*.out\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "generated", "code.go"), "x")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "app.out"), "x")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "main.go"), "x")

	matcher, matcherError := filter.NewRuleFileMatcher(rootDirectory)
	if matcherError != nil {
		testingHandle.Fatalf("NewRuleFileMatcher error: %v", matcherError)
	}
	projectContext := types.ProjectContext{RootDirectory: rootDirectory, UseIgnoreRules: true, UseDefaultIgnores: true}

	expected := strings.Join([]string{"├── .gitignore", "└── main.go"}, "\n")
	if rendered := commands.RenderTree(rootDirectory, filter.NewPathFilter(projectContext, matcher)); rendered != expected {
		testingHandle.Fatalf("unexpected tree:\n%s\nexpected:\n%s", rendered, expected)
	}

	projectContext.UseIgnoreRules = false
	rendered := commands.RenderTree(rootDirectory, filter.NewPathFilter(projectContext, matcher))
	if !strings.Contains(rendered, "generated/") || !strings.Contains(rendered, "app.out") {
		testingHandle.Fatalf("expected ignored entries once rules are disabled:\n%s", rendered)
	}
}

func TestBuildNodesRecordsSizes(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "data.txt"), strings.Repeat("x", 2048))
	nodes := commands.NewTreeBuilder(defaultFilter(rootDirectory)).BuildNodes(rootDirectory)
	if len(nodes) != 1 {
		testingHandle.Fatalf("expected one node, got %d", len(nodes))
	}
	if nodes[0].SizeBytes != 2048 || nodes[0].Size != "2kb" || nodes[0].Type != types.NodeTypeFile {
		testingHandle.Fatalf("unexpected node: %+v", nodes[0])
	}
}
