// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/promptgen/internal/config"
	"github.com/temirov/promptgen/internal/services/clipboard"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	versionFlagName      = "version"
	verboseFlagName      = "verbose"
	configFlagName       = "config"
	versionTemplate      = "promptgen version: %s\n"
	rootUse              = "promptgen"
	rootShortDescription = "build LLM prompts from a project tree and selected files"
	rootLongDescription  = `promptgen renders a filtered tree of a project directory and assembles a prompt
from free-form instructions, that tree and the contents of selected main files.
Filtering honors the project .gitignore, custom glob patterns and built-in defaults.
Use --config to point at a configuration file and --version to print the application version.`
	versionFlagDescription = "display application version"
	verboseFlagDescription = "enable debug logging"
	configFlagDescription  = "path to a configuration file (defaults to ./.promptgen.yaml)"

	// skipConfigurationAnnotation marks commands that must run without loading configuration.
	skipConfigurationAnnotation = "promptgen/skip-configuration"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
)

// Options wires process streams and collaborators into the command tree.
// Zero values select the process streams, the system clipboard and a no-op logger.
type Options struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Copier   clipboard.Copier
	Logger   *zap.Logger
	LogLevel *zap.AtomicLevel
}

type application struct {
	stdout   io.Writer
	stderr   io.Writer
	copier   clipboard.Copier
	logger   *zap.Logger
	logLevel *zap.AtomicLevel

	configFilePath string
	verbose        bool
	configuration  config.ApplicationConfiguration
}

func newApplication(options Options) *application {
	app := &application{
		stdout:   options.Stdout,
		stderr:   options.Stderr,
		copier:   options.Copier,
		logger:   utils.LoggerOrNop(options.Logger),
		logLevel: options.LogLevel,
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.copier == nil {
		app.copier = clipboard.NewService()
	}
	return app
}

// Execute runs the promptgen application with the process arguments.
func Execute(options Options) error {
	rootCommand := NewRootCommand(options)
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command and its subcommands.
func NewRootCommand(options Options) *cobra.Command {
	app := newApplication(options)
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(app.stdout, versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepare(command)
		},
	}
	rootCommand.SetOut(app.stdout)
	rootCommand.SetErr(app.stderr)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&app.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		app.newTreeCommand(),
		app.newFilesCommand(),
		app.newPromptCommand(),
		app.newWatchCommand(),
		app.newProfileCommand(),
		app.newConfigCommand(),
	)
	return rootCommand
}

// prepare applies --verbose and loads the merged application configuration.
func (app *application) prepare(command *cobra.Command) error {
	if app.verbose && app.logLevel != nil {
		app.logLevel.SetLevel(zapcore.DebugLevel)
	}
	for current := command; current != nil; current = current.Parent() {
		if _, skip := current.Annotations[skipConfigurationAnnotation]; skip {
			return nil
		}
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: app.configFilePath,
	})
	if loadError != nil {
		return loadError
	}
	app.configuration = loaded
	app.logger.Debug("configuration loaded",
		zap.Int("workers", loaded.Tasks.Workers),
		zap.Strings("custom_ignores", loaded.Prompt.CustomIgnores))
	return nil
}
