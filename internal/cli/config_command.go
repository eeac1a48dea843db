package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/temirov/promptgen/internal/config"
)

const (
	configUse                  = "config"
	configShortDescription     = "manage promptgen configuration"
	configInitUse              = "init"
	configInitShortDescription = "write a default configuration file"
	configInitLongDescription  = `Write the default configuration to ./.promptgen.yaml, or with --global to
~/.promptgen/config.yaml. Existing files are kept unless --force is given.`
	globalFlagName        = "global"
	globalFlagDescription = "write the global configuration instead of the local one"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"
	configWrittenTemplate = "Wrote configuration to %s\n"
)

func (app *application) newConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:         configUse,
		Short:       configShortDescription,
		Annotations: map[string]string{skipConfigurationAnnotation: "true"},
	}
	configCommand.AddCommand(app.newConfigInitCommand())
	return configCommand
}

func (app *application) newConfigInitCommand() *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Long:  configInitLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(app.stdout, configWrittenTemplate, writtenPath)
			return writeError
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
