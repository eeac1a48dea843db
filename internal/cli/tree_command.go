package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/promptgen/internal/commands"
	"github.com/temirov/promptgen/internal/output"
	"github.com/temirov/promptgen/internal/types"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	treeUse              = "tree [dir]"
	treeAlias            = "t"
	treeShortDescription = "display the filtered project tree (" + treeAlias + ")"
	treeLongDescription  = `Render the directory tree of a project with the same filters used for prompts.
Use --format to select raw or json output.`
	treeUsageExample = `  # Render the current directory
  promptgen tree

  # Emit JSON and hide build output
  promptgen tree --format json -e 'build/' ./service`

	formatFlagName          = "format"
	formatFlagDescription   = "output format (raw or json)"
	invalidFormatMessage    = "invalid format value '%s'"
	defaultPath             = "."
	errorNotDirectoryFormat = "'%s' is not a directory"
)

func (app *application) newTreeCommand() *cobra.Command {
	var filterConfiguration filterOptions
	outputFormat := types.FormatRaw

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			outputFormatLower := strings.ToLower(outputFormat)
			if outputFormatLower != types.FormatRaw && outputFormatLower != types.FormatJSON {
				return fmt.Errorf(invalidFormatMessage, outputFormat)
			}
			rootDirectory, resolveError := resolveDirectoryArgument(arguments)
			if resolveError != nil {
				return resolveError
			}
			filterConfiguration.resolve(command, app.configuration)
			pathFilter := filterConfiguration.newProjectFilter(rootDirectory, app.configuration, app.logger)
			nodes := commands.NewTreeBuilder(pathFilter).BuildNodes(rootDirectory)

			if outputFormatLower == types.FormatJSON {
				rendered, renderError := output.RenderTreeJSON(nodes)
				if renderError != nil {
					return renderError
				}
				_, writeError := fmt.Fprintln(app.stdout, rendered)
				return writeError
			}
			rendered := output.RenderTreeText(nodes)
			if rendered == "" {
				rendered = commands.EmptyTreeSentinel
			}
			_, writeError := fmt.Fprintln(app.stdout, rendered)
			return writeError
		},
	}
	filterConfiguration.register(treeCommand)
	treeCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	return treeCommand
}

// resolveDirectoryArgument returns the absolute form of the optional directory argument,
// defaulting to the working directory.
func resolveDirectoryArgument(arguments []string) (string, error) {
	directoryPath := defaultPath
	if len(arguments) > 0 {
		directoryPath = arguments[0]
	}
	absolutePath, absError := filepath.Abs(directoryPath)
	if absError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, directoryPath, absError)
	}
	if !utils.IsDirectory(absolutePath) {
		return "", fmt.Errorf(errorNotDirectoryFormat, directoryPath)
	}
	return absolutePath, nil
}
