package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptgen/internal/config"
	"github.com/temirov/promptgen/internal/filter"
	"github.com/temirov/promptgen/internal/types"
	"github.com/temirov/promptgen/internal/utils"
)

const (
	exclusionFlagName        = "e"
	gitignoreFlagName        = "gitignore"
	defaultsFlagName         = "defaults"
	exclusionFlagDescription = "custom ignore pattern (repeatable); a trailing / matches directories only"
	gitignoreFlagDescription = "apply the project .gitignore"
	defaultsFlagDescription  = "apply built-in ignores and hide dotfiles"
)

// filterOptions holds the filtering flags shared by every command that walks a project.
type filterOptions struct {
	exclusionPatterns []string
	useGitignore      bool
	useDefaults       bool
}

func (options *filterOptions) register(command *cobra.Command) {
	command.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerToggleFlag(command.Flags(), &options.useGitignore, gitignoreFlagName, true, gitignoreFlagDescription)
	registerToggleFlag(command.Flags(), &options.useDefaults, defaultsFlagName, true, defaultsFlagDescription)
}

// resolve fills toggles the user did not set from configuration.
func (options *filterOptions) resolve(command *cobra.Command, configuration config.ApplicationConfiguration) {
	if !command.Flags().Changed(gitignoreFlagName) {
		options.useGitignore = config.BoolValue(configuration.Prompt.UseGitignore, true)
	}
	if !command.Flags().Changed(defaultsFlagName) {
		options.useDefaults = config.BoolValue(configuration.Prompt.DefaultIgnores, true)
	}
}

// customIgnoreText merges configured patterns, extra text and -e patterns into one
// newline-separated block.
func (options *filterOptions) customIgnoreText(configuration config.ApplicationConfiguration, extraText string) string {
	var lines []string
	lines = append(lines, configuration.Prompt.CustomIgnores...)
	lines = append(lines, utils.SplitNonEmptyLines(extraText)...)
	lines = append(lines, options.exclusionPatterns...)
	return strings.Join(utils.DeduplicatePatterns(lines), "\n")
}

// newProjectFilter builds a filter rooted at rootDirectory. An unreadable .gitignore
// disables rule-file filtering with a warning.
func (options *filterOptions) newProjectFilter(rootDirectory string, configuration config.ApplicationConfiguration, logger *zap.Logger) *filter.PathFilter {
	projectContext := types.ProjectContext{
		RootDirectory:     rootDirectory,
		UseIgnoreRules:    options.useGitignore,
		UseDefaultIgnores: options.useDefaults,
		CustomPatterns:    config.ParseCustomPatterns(options.customIgnoreText(configuration, "")),
	}
	var externalMatcher filter.IgnoreMatcher
	if options.useGitignore {
		matcher, matcherError := filter.NewRuleFileMatcher(rootDirectory)
		if matcherError != nil {
			logger.Warn(".gitignore disabled", zap.Error(matcherError))
		} else {
			externalMatcher = matcher
		}
	}
	return filter.NewPathFilter(projectContext, externalMatcher)
}
