package cli

import (
	"github.com/spf13/cobra"
)

const (
	promptUse              = "prompt [dir]"
	promptAlias            = "p"
	promptShortDescription = "assemble a prompt from instructions, the tree and main files (" + promptAlias + ")"
	promptLongDescription  = `Assemble a prompt for the project at [dir] (default: the working directory).
The prompt starts with the instructions, followed by the filtered project tree and the
content of every main file. Binary files are represented by a placeholder.`
	promptUsageExample = `  # Ask about two files of the current project
  promptgen prompt -i "Review the error handling" --file main.go --file internal/cli/cli.go

  # Add every visible file below ./internal and copy the result
  promptgen prompt --folder internal --recursive --copy

  # Start from a saved profile and print a token estimate
  promptgen prompt --profile backend --tokens`
)

func (app *application) newPromptCommand() *cobra.Command {
	var inputs promptInputs
	var outputs promptOutputs

	promptCommand := &cobra.Command{
		Use:     promptUse,
		Aliases: []string{promptAlias},
		Short:   promptShortDescription,
		Long:    promptLongDescription,
		Example: promptUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			outputs.resolve(command, app.configuration)
			activePipeline, startError := app.startPipeline(command.Context(), command, arguments, &inputs, nil)
			if startError != nil {
				return startError
			}
			defer activePipeline.close()
			return activePipeline.emit(activePipeline.session.Prompt(), outputs)
		},
	}
	inputs.register(promptCommand)
	outputs.register(promptCommand)
	return promptCommand
}
