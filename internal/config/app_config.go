package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/temirov/promptgen/internal/utils"
)

const (
	environmentKeyProfilesDirectory = "profiles_directory"
	environmentKeyTokenModel        = "tokens_model"
	environmentKeyWorkers           = "workers"

	defaultProfilesDocumentsDirectory = "Documents"
	defaultProfilesDirectoryName      = "PromptGenConfigs"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults for the prompt pipeline and its collaborators.
type ApplicationConfiguration struct {
	Prompt   PromptConfiguration  `mapstructure:"prompt"`
	Tasks    TaskConfiguration    `mapstructure:"tasks"`
	Profiles ProfileConfiguration `mapstructure:"profiles"`
}

// PromptConfiguration defines filtering and output defaults.
type PromptConfiguration struct {
	UseGitignore   *bool              `mapstructure:"use_gitignore"`
	DefaultIgnores *bool              `mapstructure:"default_ignores"`
	CustomIgnores  []string           `mapstructure:"custom_ignores"`
	Clipboard      *bool              `mapstructure:"clipboard"`
	Tokens         TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// TaskConfiguration tunes the background orchestrator. Zero values select built-in defaults.
type TaskConfiguration struct {
	Workers       int           `mapstructure:"workers"`
	DrainInterval time.Duration `mapstructure:"drain_interval"`
	DebounceDelay time.Duration `mapstructure:"debounce_delay"`
}

// ProfileConfiguration locates the saved profile store.
type ProfileConfiguration struct {
	Directory string `mapstructure:"directory"`
}

// LoadApplicationConfiguration loads configuration from the global file, the local file
// and finally the environment (after loading a .env file from the working directory).
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged = merged.Merge(loadEnvironmentOverrides(workingDirectory))
	merged.Prompt.CustomIgnores = utils.DeduplicatePatterns(merged.Prompt.CustomIgnores)

	return merged, nil
}

func loadEnvironmentOverrides(workingDirectory string) ApplicationConfiguration {
	_ = godotenv.Load(filepath.Join(workingDirectory, utils.DotEnvFileName))

	environmentReader := viper.New()
	environmentReader.SetEnvPrefix(utils.EnvironmentPrefix)
	environmentReader.AutomaticEnv()

	var overrides ApplicationConfiguration
	overrides.Profiles.Directory = strings.TrimSpace(environmentReader.GetString(environmentKeyProfilesDirectory))
	overrides.Prompt.Tokens.Model = strings.TrimSpace(environmentReader.GetString(environmentKeyTokenModel))
	overrides.Tasks.Workers = environmentReader.GetInt(environmentKeyWorkers)
	return overrides
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Prompt = result.Prompt.merge(override.Prompt)
	result.Tasks = result.Tasks.merge(override.Tasks)
	if override.Profiles.Directory != "" {
		result.Profiles.Directory = override.Profiles.Directory
	}
	return result
}

// ProfilesDirectory returns the configured profile directory or ~/Documents/PromptGenConfigs.
func (config ApplicationConfiguration) ProfilesDirectory() (string, error) {
	if config.Profiles.Directory != "" {
		return expandHomeDirectory(config.Profiles.Directory)
	}
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for profiles: %w", err)
	}
	return filepath.Join(homeDirectory, defaultProfilesDocumentsDirectory, defaultProfilesDirectoryName), nil
}

func (config PromptConfiguration) merge(override PromptConfiguration) PromptConfiguration {
	result := config
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.DefaultIgnores != nil {
		result.DefaultIgnores = cloneBool(override.DefaultIgnores)
	}
	if len(override.CustomIgnores) > 0 {
		result.CustomIgnores = append([]string{}, utils.DeduplicatePatterns(override.CustomIgnores)...)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config TaskConfiguration) merge(override TaskConfiguration) TaskConfiguration {
	result := config
	if override.Workers > 0 {
		result.Workers = override.Workers
	}
	if override.DrainInterval > 0 {
		result.DrainInterval = override.DrainInterval
	}
	if override.DebounceDelay > 0 {
		result.DebounceDelay = override.DebounceDelay
	}
	return result
}

// BoolValue dereferences value, falling back to defaultValue when unset.
func BoolValue(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func expandHomeDirectory(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for %s: %w", path, err)
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(path, "~")), nil
}
