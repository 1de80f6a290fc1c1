package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// LoggerInitializationFailedMessageFormat reports a failure to construct the application logger.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage reports a fatal application error.
const ApplicationExecutionFailedMessage = "snapgrab terminated"

// Ignore file constants used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file read from the scan root.
	GitIgnoreFileName = ".gitignore"
	// ToolIgnoreFileName is the name of the tool-specific ignore file merged after .gitignore.
	ToolIgnoreFileName = ".snapgrabignore"
	// GitDirectoryName is the name of the Git repository metadata directory.
	GitDirectoryName = ".git"
)

// Settings file constants.
const (
	// SettingsFileName is the name of the optional YAML settings file.
	SettingsFileName = ".snapgrab.yaml"
	// GlobalConfigDirectoryName is the per-user directory holding global settings and the configuration store.
	GlobalConfigDirectoryName = ".snapgrab"
	// ConfigurationStoreFileName is the keyed JSON file persisting named configurations.
	ConfigurationStoreFileName = "configurations.json"
)
