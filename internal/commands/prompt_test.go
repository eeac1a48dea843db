package commands_test

import (
	"strings"
	"testing"

	"github.com/temirov/promptgen/internal/commands"
	"github.com/temirov/promptgen/internal/filter"
)

func TestAssemblePrompt(testingHandle *testing.T) {
	tree := "├── src/\n│   └── main.go\n└── go.mod"
	mainFiles := "--- File: src/main.go ---\npackage main\n--- End File ---"

	testCases := []struct {
		name     string
		input    commands.PromptInput
		expected string
	}{
		{
			name: "all_sections",
			input: commands.PromptInput{
				Instructions:     "  Explain the code.  ",
				ProjectName:      "demo",
				TreeText:         tree,
				ActiveFilters:    []string{filter.FilterNameIgnoreRules, filter.FilterNameDefaultIgnores},
				MainFilesContent: mainFiles,
			},
			expected: strings.Join([]string{
				"--- INSTRUCTIONS ---",
				"Explain the code.",
				"",
				"--- PROJECT CONTEXT: demo ---",
				"File Tree Structure (Filters: .gitignore active, default ignores active):",
				tree,
				"",
				"--- MAIN FILE(S) CONTENT ---",
				mainFiles,
			}, "\n"),
		},
		{
			name: "no_project_no_instructions",
			input: commands.PromptInput{
				Instructions:     " \n\t",
				TreeText:         tree,
				MainFilesContent: commands.NoMainFilesSentinel,
			},
			expected: "--- MAIN FILE(S) CONTENT ---\n(No main files added to the list.)",
		},
		{
			name: "empty_tree_no_filters",
			input: commands.PromptInput{
				ProjectName: "demo",
				TreeText:    commands.EmptyTreeSentinel,
			},
			expected: strings.Join([]string{
				"--- PROJECT CONTEXT: demo ---",
				"File Tree Structure: (No files to display or all files were ignored by filters (Filters: none active))",
				"",
				"--- MAIN FILE(S) CONTENT ---",
				"(No main files added to the list.)",
			}, "\n"),
		},
		{
			name: "blank_tree_treated_as_empty",
			input: commands.PromptInput{
				ProjectName:   "demo",
				ActiveFilters: []string{filter.FilterNameCustomPatterns},
			},
			expected: strings.Join([]string{
				"--- PROJECT CONTEXT: demo ---",
				"File Tree Structure: (No files to display or all files were ignored by filters (Filters: custom ignores active))",
				"",
				"--- MAIN FILE(S) CONTENT ---",
				"(No main files added to the list.)",
			}, "\n"),
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			if assembled := commands.AssemblePrompt(testCase.input); assembled != testCase.expected {
				subTest.Fatalf("unexpected prompt:\n%s\nexpected:\n%s", assembled, testCase.expected)
			}
		})
	}
}

func TestAssemblePromptIsDeterministic(testingHandle *testing.T) {
	input := commands.PromptInput{Instructions: "x", ProjectName: "p", TreeText: "└── a", MainFilesContent: "b"}
	if commands.AssemblePrompt(input) != commands.AssemblePrompt(input) {
		testingHandle.Fatalf("expected identical output for identical input")
	}
}
