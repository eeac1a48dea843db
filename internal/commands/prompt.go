package commands

import (
	"fmt"
	"strings"
)

const (
	instructionsHeader   = "--- INSTRUCTIONS ---"
	projectContextFormat = "--- PROJECT CONTEXT: %s ---"
	treeHeaderFormat     = "File Tree Structure (Filters: %s):"
	emptyTreeLineFormat  = "File Tree Structure: (No files to display or all files were ignored by filters (Filters: %s))"
	mainFilesHeader      = "--- MAIN FILE(S) CONTENT ---"
	noActiveFiltersLabel = "none active"
	filterNameSeparator  = ", "
	sectionSeparator     = "\n\n"
	sectionLineSeparator = "\n"
)

// PromptInput is everything the prompt text depends on.
type PromptInput struct {
	Instructions string
	// ProjectName is empty when no project is open; the project section is then omitted.
	ProjectName   string
	TreeText      string
	ActiveFilters []string
	// MainFilesContent is the output of FileAggregator.Aggregate.
	MainFilesContent string
}

// AssemblePrompt joins the instructions, project context and main file sections with one
// blank line between them and trims the result.
func AssemblePrompt(input PromptInput) string {
	var sections []string

	if instructions := strings.TrimSpace(input.Instructions); instructions != "" {
		sections = append(sections, instructionsHeader+sectionLineSeparator+instructions)
	}

	if input.ProjectName != "" {
		filterLabel := noActiveFiltersLabel
		if len(input.ActiveFilters) > 0 {
			filterLabel = strings.Join(input.ActiveFilters, filterNameSeparator)
		}
		projectLines := []string{fmt.Sprintf(projectContextFormat, input.ProjectName)}
		treeText := strings.TrimRight(input.TreeText, "\n")
		if strings.TrimSpace(treeText) == "" || treeText == EmptyTreeSentinel {
			projectLines = append(projectLines, fmt.Sprintf(emptyTreeLineFormat, filterLabel))
		} else {
			projectLines = append(projectLines, fmt.Sprintf(treeHeaderFormat, filterLabel), treeText)
		}
		sections = append(sections, strings.Join(projectLines, sectionLineSeparator))
	}

	mainFilesContent := input.MainFilesContent
	if strings.TrimSpace(mainFilesContent) == "" {
		mainFilesContent = NoMainFilesSentinel
	}
	sections = append(sections, mainFilesHeader+sectionLineSeparator+mainFilesContent)

	return strings.TrimSpace(strings.Join(sections, sectionSeparator))
}
