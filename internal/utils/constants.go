package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

const (
	// ApplicationName is the binary and configuration namespace.
	ApplicationName = "promptgen"
	// GlobalConfigDirectoryName is the directory under the user's home holding global configuration.
	GlobalConfigDirectoryName = ".promptgen"
	// ConfigFileName is the configuration file name inside GlobalConfigDirectoryName.
	ConfigFileName = "config.yaml"
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = ".promptgen.yaml"
	// EnvironmentPrefix prefixes every environment override.
	EnvironmentPrefix = "PROMPTGEN"
	// DotEnvFileName is loaded from the working directory before environment overrides are read.
	DotEnvFileName = ".env"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command errors.
	ApplicationExecutionFailedMessage = "promptgen failed"
)

const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)
