package output_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/temirov/promptgen/internal/output"
	"github.com/temirov/promptgen/internal/types"
)

func sampleTree() []*types.TreeNode {
	return []*types.TreeNode{
		{
			Name: "src",
			Type: types.NodeTypeDirectory,
			Children: []*types.TreeNode{
				{Name: "app.go", Type: types.NodeTypeFile},
				{
					Name: "locked",
					Type: types.NodeTypeDirectory,
					Children: []*types.TreeNode{
						{Name: "locked", Type: types.NodeTypeDiagnostic, Diagnostic: types.DiagnosticAccessDenied},
					},
				},
			},
		},
		{Name: "README.md", Type: types.NodeTypeFile},
	}
}

func TestRenderTreeText(testingHandle *testing.T) {
	expected := strings.Join([]string{
		"├── src/",
		"│   ├── app.go",
		"│   └── locked/",
		"│       [ACCESS DENIED] locked",
		"└── README.md",
	}, "\n")
	if rendered := output.RenderTreeText(sampleTree()); rendered != expected {
		testingHandle.Fatalf("unexpected tree:\n%s\nexpected:\n%s", rendered, expected)
	}
}

func TestRenderTreeTextDiagnosticDetail(testingHandle *testing.T) {
	nodes := []*types.TreeNode{{
		Name:             "project",
		Type:             types.NodeTypeDiagnostic,
		Diagnostic:       types.DiagnosticErrorIterating,
		DiagnosticDetail: "input/output error",
	}}
	expected := "[ERROR ITERATING] project: input/output error"
	if rendered := output.RenderTreeText(nodes); rendered != expected {
		testingHandle.Fatalf("expected %q, got %q", expected, rendered)
	}
}

func TestRenderTreeTextEmpty(testingHandle *testing.T) {
	if rendered := output.RenderTreeText(nil); rendered != "" {
		testingHandle.Fatalf("expected empty output, got %q", rendered)
	}
}

func TestRenderTreeJSON(testingHandle *testing.T) {
	rendered, renderError := output.RenderTreeJSON(sampleTree())
	if renderError != nil {
		testingHandle.Fatalf("RenderTreeJSON error: %v", renderError)
	}
	var decoded []map[string]interface{}
	if decodeError := json.Unmarshal([]byte(rendered), &decoded); decodeError != nil {
		testingHandle.Fatalf("invalid JSON: %v", decodeError)
	}
	if len(decoded) != 2 || decoded[0]["name"] != "src" || decoded[0]["type"] != types.NodeTypeDirectory {
		testingHandle.Fatalf("unexpected JSON: %s", rendered)
	}

	empty, emptyError := output.RenderTreeJSON(nil)
	if emptyError != nil || empty != "[]" {
		testingHandle.Fatalf("expected [] for no nodes, got %q (%v)", empty, emptyError)
	}
}
