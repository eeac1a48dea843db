// Package session owns the state of one prompt-building session and drives the
// refresh pipeline through the task orchestrator.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/promptgen/internal/commands"
	"github.com/temirov/promptgen/internal/config"
	"github.com/temirov/promptgen/internal/filter"
	"github.com/temirov/promptgen/internal/services/clipboard"
	"github.com/temirov/promptgen/internal/services/tasks"
	"github.com/temirov/promptgen/internal/types"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	// DefaultDebounceDelay is the quiet period after typing before a refresh starts.
	DefaultDebounceDelay = 750 * time.Millisecond

	// Progress labels reported for each pipeline step.
	ProgressBuildingTree     = "Building file tree..."
	ProgressCollectingFiles  = "Collecting files..."
	ProgressGeneratingPrompt = "Generating final prompt..."

	progressBuildingTreeFraction     = 0.1
	progressCollectingFilesFraction  = 0.5
	progressGeneratingPromptFraction = 0.8

	jobNameBuildTree      = "build file tree"
	jobNameCollectFiles   = "collect folder files"
	jobNameGeneratePrompt = "generate prompt"

	debounceKeyCustomIgnores = "custom-ignores"
	debounceKeyInstructions  = "instructions"

	errorOpenProjectFormat  = "open project %s: %w"
	errorAbsolutePathFormat = "abs failed for '%s': %w"
)

var (
	// ErrNoProject is returned by operations that need an open project.
	ErrNoProject = errors.New("no project folder is open")
	// ErrNotDirectory is returned when a project or folder path is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Options configures a Session.
type Options struct {
	Orchestrator *tasks.Orchestrator
	// Aggregator is created with the default cache size when nil.
	Aggregator *commands.FileAggregator
	// Copier defaults to the system clipboard.
	Copier        clipboard.Copier
	Logger        *zap.Logger
	DebounceDelay time.Duration
	// UseIgnoreRules and UseDefaultIgnores seed the project context.
	UseIgnoreRules    bool
	UseDefaultIgnores bool
	// OnTreeChanged and OnPromptChanged run on the coordinator after each completed step.
	OnTreeChanged   func(tree string)
	OnPromptChanged func(prompt string)
}

// Session holds the project context, main file list, instructions and the last rendered
// tree and prompt. Every method must be called from the orchestrator's coordinator.
type Session struct {
	orchestrator  *tasks.Orchestrator
	aggregator    *commands.FileAggregator
	copier        clipboard.Copier
	logger        *zap.Logger
	debounceDelay time.Duration
	onTree        func(string)
	onPrompt      func(string)

	projectContext   types.ProjectContext
	externalMatcher  filter.IgnoreMatcher
	customIgnoreText string
	instructions     string
	mainFiles        []string
	tree             string
	prompt           string
	state            State
}

// New constructs an idle session without an open project.
func New(options Options) (*Session, error) {
	if options.Orchestrator == nil {
		return nil, errors.New("session requires a task orchestrator")
	}
	logger := utils.LoggerOrNop(options.Logger)
	aggregator := options.Aggregator
	if aggregator == nil {
		var aggregatorError error
		aggregator, aggregatorError = commands.NewFileAggregator(commands.DefaultContentCacheSize, logger)
		if aggregatorError != nil {
			return nil, aggregatorError
		}
	}
	copier := options.Copier
	if copier == nil {
		copier = clipboard.NewService()
	}
	debounceDelay := options.DebounceDelay
	if debounceDelay <= 0 {
		debounceDelay = DefaultDebounceDelay
	}
	return &Session{
		orchestrator:  options.Orchestrator,
		aggregator:    aggregator,
		copier:        copier,
		logger:        logger,
		debounceDelay: debounceDelay,
		onTree:        options.OnTreeChanged,
		onPrompt:      options.OnPromptChanged,
		projectContext: types.ProjectContext{
			UseIgnoreRules:    options.UseIgnoreRules,
			UseDefaultIgnores: options.UseDefaultIgnores,
		},
	}, nil
}

// State returns the pipeline position.
func (session *Session) State() State {
	return session.state
}

// ProjectContext returns a copy of the filtering state.
func (session *Session) ProjectContext() types.ProjectContext {
	return session.projectContext.Clone()
}

// MainFiles returns a copy of the main file list.
func (session *Session) MainFiles() []string {
	return append([]string(nil), session.mainFiles...)
}

// Instructions returns the current instructions text.
func (session *Session) Instructions() string {
	return session.instructions
}

// CustomIgnoreText returns the custom pattern text as entered.
func (session *Session) CustomIgnoreText() string {
	return session.customIgnoreText
}

// Tree returns the last rendered tree, empty when no project is open.
func (session *Session) Tree() string {
	return session.tree
}

// Prompt returns the last assembled prompt.
func (session *Session) Prompt() string {
	return session.prompt
}

// Filter returns a snapshot filter for the current project context and ignore matcher.
func (session *Session) Filter() *filter.PathFilter {
	return session.snapshotFilter()
}

// OpenProject sets the project root, clears the main file list and requests a full refresh.
// Reopening the current root changes nothing.
func (session *Session) OpenProject(directoryPath string) error {
	absoluteDirectoryPath, absError := filepath.Abs(directoryPath)
	if absError != nil {
		return fmt.Errorf(errorAbsolutePathFormat, directoryPath, absError)
	}
	if !utils.IsDirectory(absoluteDirectoryPath) {
		return fmt.Errorf(errorOpenProjectFormat, absoluteDirectoryPath, ErrNotDirectory)
	}
	if absoluteDirectoryPath == session.projectContext.RootDirectory {
		session.logger.Debug("project folder unchanged", zap.String("project", absoluteDirectoryPath))
		return nil
	}
	session.projectContext.RootDirectory = absoluteDirectoryPath
	session.mainFiles = nil
	session.logger.Info("project folder selected", zap.String("project", absoluteDirectoryPath))
	session.RequestFullRefresh()
	return nil
}

// CloseProject forgets the project root and requests a full refresh.
func (session *Session) CloseProject() {
	if !session.projectContext.HasProject() {
		return
	}
	session.projectContext.RootDirectory = ""
	session.RequestFullRefresh()
}

// SetUseIgnoreRules toggles the project .gitignore and requests a full refresh on change.
func (session *Session) SetUseIgnoreRules(enabled bool) {
	if session.projectContext.UseIgnoreRules == enabled {
		return
	}
	session.projectContext.UseIgnoreRules = enabled
	session.RequestFullRefresh()
}

// SetUseDefaultIgnores toggles the built-in name sets and requests a full refresh on change.
func (session *Session) SetUseDefaultIgnores(enabled bool) {
	if session.projectContext.UseDefaultIgnores == enabled {
		return
	}
	session.projectContext.UseDefaultIgnores = enabled
	session.RequestFullRefresh()
}

// SetCustomIgnoreText replaces the custom patterns and schedules a debounced full refresh.
func (session *Session) SetCustomIgnoreText(text string) {
	session.customIgnoreText = text
	session.projectContext.CustomPatterns = config.ParseCustomPatterns(text)
	session.orchestrator.Debounce(debounceKeyCustomIgnores, session.debounceDelay, func() {
		session.RequestFullRefresh()
	})
}

// SetInstructions replaces the instructions and schedules a debounced prompt refresh.
func (session *Session) SetInstructions(text string) {
	session.instructions = text
	session.orchestrator.Debounce(debounceKeyInstructions, session.debounceDelay, func() {
		session.RequestPromptRefresh()
	})
}

// AddFiles appends paths not yet in the main file list and requests a prompt refresh
// when anything was added. It returns the number of added paths.
func (session *Session) AddFiles(paths []string) int {
	addedCount := 0
	for _, path := range paths {
		absolutePath, absError := filepath.Abs(path)
		if absError != nil {
			session.logger.Warn("skipping main file", zap.String("path", path), zap.Error(absError))
			continue
		}
		if session.appendMainFile(absolutePath) {
			addedCount++
		}
	}
	session.logger.Info("added main files", zap.Int("count", addedCount))
	if addedCount > 0 {
		session.RequestPromptRefresh()
	}
	return addedCount
}

// AddFolder collects the visible files of directoryPath on a worker and appends them to
// the main file list. It returns false when the request was dropped because the pipeline
// is busy.
func (session *Session) AddFolder(directoryPath string, recursive bool) (bool, error) {
	if !session.projectContext.HasProject() {
		return false, ErrNoProject
	}
	absoluteDirectoryPath, absError := filepath.Abs(directoryPath)
	if absError != nil {
		return false, fmt.Errorf(errorAbsolutePathFormat, directoryPath, absError)
	}
	if !session.canStart(jobNameCollectFiles) {
		return false, nil
	}

	pathFilter := session.snapshotFilter()
	session.state = StateCollectingFiles
	session.orchestrator.ReportProgress(ProgressCollectingFiles, progressCollectingFilesFraction)
	job := tasks.NewJob(jobNameCollectFiles, func() ([]string, error) {
		return commands.CollectFolderFiles(absoluteDirectoryPath, pathFilter, recursive)
	}, func(collected []string) {
		addedCount := 0
		for _, path := range collected {
			if session.appendMainFile(path) {
				addedCount++
			}
		}
		session.logger.Info("added files from folder",
			zap.String("folder", absoluteDirectoryPath),
			zap.Bool("recursive", recursive),
			zap.Int("count", addedCount))
		if addedCount == 0 {
			session.state = StateIdle
			return
		}
		session.startPrompt()
	}).WithFailure(session.resetToIdle)
	return session.submit(job), nil
}

// RemoveFiles drops paths from the main file list and requests a prompt refresh when
// anything was removed. It returns the number of removed paths.
func (session *Session) RemoveFiles(paths []string) int {
	removal := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if absolutePath, absError := filepath.Abs(path); absError == nil {
			removal[absolutePath] = struct{}{}
		}
	}
	kept := session.mainFiles[:0:0]
	for _, mainFile := range session.mainFiles {
		if _, remove := removal[mainFile]; !remove {
			kept = append(kept, mainFile)
		}
	}
	removedCount := len(session.mainFiles) - len(kept)
	session.mainFiles = kept
	if removedCount > 0 {
		session.RequestPromptRefresh()
	}
	return removedCount
}

// ClearFiles empties the main file list and requests a prompt refresh.
func (session *Session) ClearFiles() {
	if len(session.mainFiles) == 0 {
		return
	}
	session.mainFiles = nil
	session.RequestPromptRefresh()
}

// RequestFullRefresh rebuilds the tree and then the prompt. Without a project only the
// prompt is rebuilt. It returns false when the request was dropped because work is pending.
func (session *Session) RequestFullRefresh() bool {
	if !session.canStart("full refresh") {
		return false
	}
	session.rebuildMatcher()
	if !session.projectContext.HasProject() {
		session.setTree("")
		return session.startPrompt()
	}

	rootDirectory := session.projectContext.RootDirectory
	pathFilter := session.snapshotFilter()
	session.state = StateBuildingTree
	session.orchestrator.ReportProgress(ProgressBuildingTree, progressBuildingTreeFraction)
	job := tasks.NewJob(jobNameBuildTree, func() (string, error) {
		return commands.RenderTree(rootDirectory, pathFilter), nil
	}, func(tree string) {
		session.setTree(tree)
		session.startPrompt()
	}).WithFailure(session.resetToIdle)
	return session.submit(job)
}

// RequestPromptRefresh rebuilds the prompt from the last tree. It returns false when the
// request was dropped because work is pending.
func (session *Session) RequestPromptRefresh() bool {
	if !session.canStart("prompt refresh") {
		return false
	}
	return session.startPrompt()
}

// CopyPrompt copies the last prompt to the clipboard.
func (session *Session) CopyPrompt() error {
	if session.prompt == "" {
		return clipboard.ErrNothingToCopy
	}
	return session.copier.Copy(session.prompt)
}

// canStart reports whether a new pipeline run may begin.
func (session *Session) canStart(request string) bool {
	if session.state != StateIdle || session.orchestrator.InFlight() > 0 {
		session.logger.Warn("application busy, request dropped",
			zap.String("request", request),
			zap.Stringer("state", session.state),
			zap.Int("in_flight", session.orchestrator.InFlight()))
		return false
	}
	return true
}

// startPrompt submits the prompt step. It is called for a fresh request or from the
// callback of the previous step.
func (session *Session) startPrompt() bool {
	session.validateMainFiles()

	input := commands.PromptInput{
		Instructions:  session.instructions,
		TreeText:      session.tree,
		ActiveFilters: session.snapshotFilter().ActiveFilterNames(),
	}
	if session.projectContext.HasProject() {
		input.ProjectName = filepath.Base(session.projectContext.RootDirectory)
	}
	mainFiles := session.MainFiles()
	projectRoot := session.projectContext.RootDirectory
	aggregator := session.aggregator

	session.state = StateAssemblingPrompt
	session.orchestrator.ReportProgress(ProgressGeneratingPrompt, progressGeneratingPromptFraction)
	job := tasks.NewJob(jobNameGeneratePrompt, func() (string, error) {
		input.MainFilesContent = aggregator.Aggregate(mainFiles, projectRoot)
		return commands.AssemblePrompt(input), nil
	}, func(prompt string) {
		session.prompt = prompt
		session.state = StateIdle
		if session.onPrompt != nil {
			session.onPrompt(prompt)
		}
	}).WithFailure(session.resetToIdle)
	return session.submit(job)
}

func (session *Session) submit(job tasks.Job) bool {
	if submitError := session.orchestrator.Submit(job); submitError != nil {
		session.logger.Warn("unable to submit job", zap.String("job", job.Name), zap.Error(submitError))
		session.state = StateIdle
		return false
	}
	return true
}

func (session *Session) resetToIdle(error) {
	session.state = StateIdle
}

func (session *Session) setTree(tree string) {
	session.tree = tree
	if session.onTree != nil {
		session.onTree(tree)
	}
}

// rebuildMatcher reloads the project .gitignore. An unreadable file disables the
// external matcher until the next rebuild.
func (session *Session) rebuildMatcher() {
	session.externalMatcher = nil
	if !session.projectContext.HasProject() || !session.projectContext.UseIgnoreRules {
		return
	}
	matcher, matcherError := filter.NewRuleFileMatcher(session.projectContext.RootDirectory)
	if matcherError != nil {
		session.logger.Warn(".gitignore disabled", zap.Error(matcherError))
		return
	}
	session.externalMatcher = matcher
}

func (session *Session) snapshotFilter() *filter.PathFilter {
	return filter.NewPathFilter(session.projectContext, session.externalMatcher)
}

// validateMainFiles drops entries that are no longer regular files.
func (session *Session) validateMainFiles() {
	existing := session.mainFiles[:0:0]
	for _, mainFile := range session.mainFiles {
		if utils.IsRegularFile(mainFile) {
			existing = append(existing, mainFile)
		}
	}
	if removedCount := len(session.mainFiles) - len(existing); removedCount > 0 {
		session.logger.Info("removed missing files from the main files list", zap.Int("count", removedCount))
	}
	session.mainFiles = existing
}

func (session *Session) appendMainFile(absolutePath string) bool {
	for _, mainFile := range session.mainFiles {
		if mainFile == absolutePath {
			return false
		}
	}
	session.mainFiles = append(session.mainFiles, absolutePath)
	return true
}
