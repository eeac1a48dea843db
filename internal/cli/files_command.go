package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/promptgen/internal/commands"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	filesUse              = "files <dir>"
	filesAlias            = "f"
	filesShortDescription = "list the files a folder would add to the main files (" + filesAlias + ")"
	filesLongDescription  = `List the visible regular files of a folder, the way adding that folder to the
main file list would collect them. Paths are printed relative to --project.`
	filesUsageExample = `  # Files directly inside ./internal
  promptgen files ./internal

  # Every visible file below ./internal
  promptgen files --recursive ./internal`

	recursiveFlagName        = "recursive"
	recursiveFlagDescription = "descend into visible subdirectories"
	projectFlagName          = "project"
	projectFlagDescription   = "project root used for .gitignore and custom patterns (defaults to the working directory)"
)

func (app *application) newFilesCommand() *cobra.Command {
	var filterConfiguration filterOptions
	var recursive bool
	var projectDirectory string

	filesCommand := &cobra.Command{
		Use:     filesUse,
		Aliases: []string{filesAlias},
		Short:   filesShortDescription,
		Long:    filesLongDescription,
		Example: filesUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			var projectArguments []string
			if projectDirectory != "" {
				projectArguments = []string{projectDirectory}
			}
			projectRoot, projectError := resolveDirectoryArgument(projectArguments)
			if projectError != nil {
				return projectError
			}
			folderPath, folderError := resolveDirectoryArgument(arguments)
			if folderError != nil {
				return folderError
			}
			filterConfiguration.resolve(command, app.configuration)
			pathFilter := filterConfiguration.newProjectFilter(projectRoot, app.configuration, app.logger)
			collected, collectError := commands.CollectFolderFiles(folderPath, pathFilter, recursive)
			if collectError != nil {
				return collectError
			}
			for _, filePath := range collected {
				if _, writeError := fmt.Fprintln(app.stdout, utils.DisplayPath(filePath, projectRoot)); writeError != nil {
					return writeError
				}
			}
			return nil
		},
	}
	filterConfiguration.register(filesCommand)
	registerToggleFlag(filesCommand.Flags(), &recursive, recursiveFlagName, false, recursiveFlagDescription)
	filesCommand.Flags().StringVar(&projectDirectory, projectFlagName, "", projectFlagDescription)
	return filesCommand
}
