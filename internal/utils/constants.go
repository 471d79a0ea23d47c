package utils

// LoggerInitializationFailedMessageFormat reports a logger construction failure.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal command failures.
const ApplicationExecutionFailedMessage = "swrelease failed"

// Plugin layout constants shared across packages.
const (
	// ComposerFileName is the package-metadata document of a plugin.
	ComposerFileName = "composer.json"
	// SourceDirectoryName holds the plugin's PHP sources.
	SourceDirectoryName = "src"
	// PHPFileExtension is the conventional extension of the main plugin class file.
	PHPFileExtension = ".php"
	// BlacklistFileName lists per-project exclusion patterns, one per line.
	BlacklistFileName = ".sw-zip-blacklist"
	// GitIgnoreFileName is the cascading ignore-file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ReleaseInfoFileName is written into every packaged plugin.
	ReleaseInfoFileName = "release_info.txt"
	// DefaultOutputDirectory receives the built archives.
	DefaultOutputDirectory = "./builds"
	// ManualDirectoryName holds per-language plugin manuals.
	ManualDirectoryName = "manual"
	// ConfigFileName is the local configuration file name.
	ConfigFileName = ".swrelease.yaml"
	// GlobalConfigDirectoryName is the directory below the user's home holding global configuration.
	GlobalConfigDirectoryName = ".swrelease"
	// GlobalConfigFileName is the global configuration file name.
	GlobalConfigFileName = "config.yaml"
	// EnvironmentFileName is the dotenv file consulted for secrets.
	EnvironmentFileName = ".env"
)
