package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/promptgen/internal/services/watch"
	"github.com/temirov/promptgen/internal/session"
)

const (
	watchUse              = "watch [dir]"
	watchAlias            = "w"
	watchShortDescription = "re-emit the prompt whenever visible project files change (" + watchAlias + ")"
	watchLongDescription  = `Assemble the prompt like the prompt command, then keep watching the visible
directories of the project. Bursts of changes are collapsed and each settled burst
rebuilds the tree and the prompt, which is emitted again. Stop with Ctrl+C.`
	watchUsageExample = `  # Keep ./prompt.txt in sync with the project
  promptgen watch --file main.go --output prompt.txt`

	watchDebounceKey = "watch"
)

func (app *application) newWatchCommand() *cobra.Command {
	var inputs promptInputs
	var outputs promptOutputs

	watchCommand := &cobra.Command{
		Use:     watchUse,
		Aliases: []string{watchAlias},
		Short:   watchShortDescription,
		Long:    watchLongDescription,
		Example: watchUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			outputs.resolve(command, app.configuration)
			ctx, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.runWatch(ctx, command, arguments, &inputs, outputs)
		},
	}
	inputs.register(watchCommand)
	outputs.register(watchCommand)
	return watchCommand
}

// runWatch emits the initial prompt and then one prompt per settled refresh until ctx is
// done. Session callbacks run on the coordinator goroutine only.
func (app *application) runWatch(ctx context.Context, command *cobra.Command, arguments []string, inputs *promptInputs, outputs promptOutputs) error {
	var activePipeline *pipeline
	streaming := false
	onPrompt := func(prompt string) {
		if !streaming {
			return
		}
		if emitError := activePipeline.emit(prompt, outputs); emitError != nil {
			app.logger.Warn("emit prompt", zap.Error(emitError))
		}
	}
	activePipeline, startError := app.startPipeline(ctx, command, arguments, inputs, onPrompt)
	if startError != nil {
		return startError
	}
	defer activePipeline.close()
	if emitError := activePipeline.emit(activePipeline.session.Prompt(), outputs); emitError != nil {
		return emitError
	}

	rootDirectory := activePipeline.session.ProjectContext().RootDirectory
	if rootDirectory == "" {
		return session.ErrNoProject
	}
	watcher, watchError := watch.New(rootDirectory, activePipeline.session.Filter(), app.logger)
	if watchError != nil {
		return watchError
	}
	streaming = true

	delay := app.configuration.Tasks.DebounceDelay
	if delay <= 0 {
		delay = session.DefaultDebounceDelay
	}
	var refresh func()
	refresh = func() {
		if !activePipeline.session.RequestFullRefresh() {
			activePipeline.orchestrator.Debounce(watchDebounceKey, delay, refresh)
		}
	}

	app.logger.Info("watching project", zap.String("root", rootDirectory))
	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		return watcher.Run(groupContext, func(path string) {
			app.logger.Debug("change detected", zap.String("path", path))
			activePipeline.orchestrator.Debounce(watchDebounceKey, delay, refresh)
		})
	})
	group.Go(func() error {
		activePipeline.orchestrator.Run(groupContext)
		return nil
	})
	return group.Wait()
}
