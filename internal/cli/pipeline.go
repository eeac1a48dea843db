package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptgen/internal/config"
	"github.com/temirov/promptgen/internal/services/tasks"
	"github.com/temirov/promptgen/internal/session"
	"github.com/temirov/promptgen/internal/tokenizer"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	fileFlagName                 = "file"
	folderFlagName               = "folder"
	instructionsFlagName         = "instructions"
	instructionsShorthand        = "i"
	instructionsFileFlagName     = "instructions-file"
	profileFlagName              = "profile"
	outputFlagName               = "output"
	copyFlagName                 = "copy"
	tokensFlagName               = "tokens"
	modelFlagName                = "model"
	fileFlagDescription          = "main file whose content is included (repeatable)"
	folderFlagDescription        = "add the visible files of a folder to the main files (repeatable)"
	folderRecursiveDescription   = "descend into visible subdirectories of every --folder"
	instructionsFlagDescription  = "instructions placed at the top of the prompt"
	instructionsFileDescription  = "read instructions from a file"
	profileFlagDescription       = "start from a saved profile"
	outputFlagDescription        = "write the prompt to a file instead of stdout"
	copyFlagDescription          = "copy the prompt to the system clipboard"
	tokensFlagDescription        = "print a token estimate to stderr"
	modelFlagDescription         = "model used for the token estimate"
	promptFileMode               = 0o644
	tokenEstimateTemplate        = "Tokens: %s\n"
	errorReadInstructionsFormat  = "read instructions file %s: %w"
	errorWriteOutputFormat       = "write prompt to %s: %w"
	errorProfilesDirectoryFormat = "resolve profiles directory: %w"
)

// promptInputs holds the flags that describe what goes into a prompt.
type promptInputs struct {
	filterOptions
	files            []string
	folders          []string
	recursive        bool
	instructions     string
	instructionsFile string
	profileName      string
}

func (inputs *promptInputs) register(command *cobra.Command) {
	inputs.filterOptions.register(command)
	command.Flags().StringArrayVar(&inputs.files, fileFlagName, nil, fileFlagDescription)
	command.Flags().StringArrayVar(&inputs.folders, folderFlagName, nil, folderFlagDescription)
	registerToggleFlag(command.Flags(), &inputs.recursive, recursiveFlagName, false, folderRecursiveDescription)
	command.Flags().StringVarP(&inputs.instructions, instructionsFlagName, instructionsShorthand, "", instructionsFlagDescription)
	command.Flags().StringVar(&inputs.instructionsFile, instructionsFileFlagName, "", instructionsFileDescription)
	command.Flags().StringVar(&inputs.profileName, profileFlagName, "", profileFlagDescription)
	command.MarkFlagsMutuallyExclusive(instructionsFlagName, instructionsFileFlagName)
}

// promptOutputs holds the flags that describe where a prompt goes.
type promptOutputs struct {
	outputPath string
	copy       bool
	tokens     bool
	model      string
}

func (outputs *promptOutputs) register(command *cobra.Command) {
	command.Flags().StringVar(&outputs.outputPath, outputFlagName, "", outputFlagDescription)
	registerToggleFlag(command.Flags(), &outputs.copy, copyFlagName, false, copyFlagDescription)
	registerToggleFlag(command.Flags(), &outputs.tokens, tokensFlagName, false, tokensFlagDescription)
	command.Flags().StringVar(&outputs.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
}

func (outputs *promptOutputs) resolve(command *cobra.Command, configuration config.ApplicationConfiguration) {
	if !command.Flags().Changed(copyFlagName) {
		outputs.copy = config.BoolValue(configuration.Prompt.Clipboard, false)
	}
	if !command.Flags().Changed(tokensFlagName) {
		outputs.tokens = config.BoolValue(configuration.Prompt.Tokens.Enabled, false)
	}
	if !command.Flags().Changed(modelFlagName) && configuration.Prompt.Tokens.Model != "" {
		outputs.model = configuration.Prompt.Tokens.Model
	}
}

// pipeline couples a session with the orchestrator that runs its background steps.
type pipeline struct {
	app          *application
	orchestrator *tasks.Orchestrator
	session      *session.Session
	counter      tokenizer.Counter
}

// startPipeline builds a session from a profile and the input flags, then waits until the
// tree and prompt are rendered.
func (app *application) startPipeline(ctx context.Context, command *cobra.Command, arguments []string, inputs *promptInputs, onPrompt func(string)) (*pipeline, error) {
	inputs.resolve(command, app.configuration)
	record, recordError := app.buildProfileRecord(command, arguments, inputs)
	if recordError != nil {
		return nil, recordError
	}
	var folderPaths []string
	for _, folder := range inputs.folders {
		folderPath, folderError := resolveDirectoryArgument([]string{folder})
		if folderError != nil {
			return nil, folderError
		}
		folderPaths = append(folderPaths, folderPath)
	}

	orchestrator := tasks.NewOrchestrator(tasks.Options{
		Workers:       app.configuration.Tasks.Workers,
		DrainInterval: app.configuration.Tasks.DrainInterval,
		Presenter:     tasks.NewLoggingPresenter(app.logger),
		Logger:        app.logger,
	})
	promptSession, sessionError := session.New(session.Options{
		Orchestrator:      orchestrator,
		Copier:            app.copier,
		Logger:            app.logger,
		DebounceDelay:     app.configuration.Tasks.DebounceDelay,
		UseIgnoreRules:    inputs.useGitignore,
		UseDefaultIgnores: inputs.useDefaults,
		OnPromptChanged:   onPrompt,
	})
	if sessionError != nil {
		orchestrator.Shutdown()
		return nil, sessionError
	}
	activePipeline := &pipeline{app: app, orchestrator: orchestrator, session: promptSession}

	for _, warning := range promptSession.ApplyProfile(record) {
		fmt.Fprintln(app.stderr, warning)
	}
	if settleError := activePipeline.settle(ctx); settleError != nil {
		activePipeline.close()
		return nil, settleError
	}
	for _, folderPath := range folderPaths {
		if _, addError := promptSession.AddFolder(folderPath, inputs.recursive); addError != nil {
			activePipeline.close()
			return nil, addError
		}
		if settleError := activePipeline.settle(ctx); settleError != nil {
			activePipeline.close()
			return nil, settleError
		}
	}
	if promptSession.Prompt() == "" {
		promptSession.RequestPromptRefresh()
		if settleError := activePipeline.settle(ctx); settleError != nil {
			activePipeline.close()
			return nil, settleError
		}
	}
	return activePipeline, nil
}

// buildProfileRecord starts from --profile when given and layers the input flags on top.
// The directory argument, or the working directory, is the project root unless the profile
// names one and no argument overrides it.
func (app *application) buildProfileRecord(command *cobra.Command, arguments []string, inputs *promptInputs) (config.ProfileRecord, error) {
	var record config.ProfileRecord
	if inputs.profileName != "" {
		store, storeError := app.profileStore()
		if storeError != nil {
			return config.ProfileRecord{}, storeError
		}
		loaded, loadError := store.Load(inputs.profileName)
		if loadError != nil {
			return config.ProfileRecord{}, loadError
		}
		record = loaded
	}
	if len(arguments) > 0 || strings.TrimSpace(record.ProjectFolder) == "" {
		projectRoot, rootError := resolveDirectoryArgument(arguments)
		if rootError != nil {
			return config.ProfileRecord{}, rootError
		}
		record.ProjectFolder = projectRoot
	}
	if command.Flags().Changed(instructionsFlagName) {
		record.Instructions = inputs.instructions
	}
	if inputs.instructionsFile != "" {
		content, readError := os.ReadFile(inputs.instructionsFile)
		if readError != nil {
			return config.ProfileRecord{}, fmt.Errorf(errorReadInstructionsFormat, inputs.instructionsFile, readError)
		}
		record.Instructions = string(content)
	}
	record.CustomIgnores = inputs.customIgnoreText(app.configuration, record.CustomIgnores)

	extraFiles, absError := utils.AbsolutePaths(inputs.files)
	if absError != nil {
		return config.ProfileRecord{}, absError
	}
	record.MainFiles = strings.Join(append(record.MainFileList(), extraFiles...), "\n")
	return record, nil
}

func (app *application) profileStore() (*config.ProfileStore, error) {
	directory, directoryError := app.configuration.ProfilesDirectory()
	if directoryError != nil {
		return nil, fmt.Errorf(errorProfilesDirectoryFormat, directoryError)
	}
	return config.NewProfileStore(directory), nil
}

// settle drives the coordinator until no step is in flight.
func (activePipeline *pipeline) settle(ctx context.Context) error {
	return activePipeline.orchestrator.WaitIdle(ctx)
}

func (activePipeline *pipeline) close() {
	activePipeline.orchestrator.Shutdown()
}

// emit writes prompt to the output file or stdout, then copies it and reports its
// token estimate when requested.
func (activePipeline *pipeline) emit(prompt string, outputs promptOutputs) error {
	app := activePipeline.app
	if outputs.outputPath != "" {
		if writeError := os.WriteFile(outputs.outputPath, []byte(prompt+"\n"), promptFileMode); writeError != nil {
			return fmt.Errorf(errorWriteOutputFormat, outputs.outputPath, writeError)
		}
		app.logger.Info("prompt written", zap.String("path", outputs.outputPath))
	} else if _, writeError := fmt.Fprintln(app.stdout, prompt); writeError != nil {
		return writeError
	}
	if outputs.copy {
		if copyError := activePipeline.session.CopyPrompt(); copyError != nil {
			return copyError
		}
		app.logger.Info("prompt copied to clipboard")
	}
	if outputs.tokens {
		if activePipeline.counter == nil {
			counter, _, counterError := tokenizer.NewCounter(tokenizer.Config{Model: outputs.model})
			if counterError != nil {
				return counterError
			}
			activePipeline.counter = counter
		}
		estimate, estimateError := tokenizer.EstimatePrompt(activePipeline.counter, prompt)
		if estimateError != nil {
			return estimateError
		}
		fmt.Fprintf(app.stderr, tokenEstimateTemplate, estimate)
	}
	return nil
}
