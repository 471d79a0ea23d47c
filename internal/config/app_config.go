package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tyemirov/swrelease/internal/utils"
)

// Keys shared by the YAML files, the dotenv file and the environment. The
// environment variable of a key is its upper-case form.
const (
	KeyRemoteHost           = "rsync_ssh_host"
	KeyRemotePort           = "rsync_ssh_port"
	KeyRemoteBasePath       = "rsync_remote_path_releases_folder"
	KeyReleaseBaseURL       = "release_base_url"
	KeyManualsDirectory     = "manuals_dir"
	KeyReleaseDirectory     = "release_dir"
	KeySlackWebhookURL      = "slack_webhook_url"
	KeyFoundationPluginPath = "foundation_plugin_path"

	dotenvConfigType = "env"
)

var environmentKeys = []string{
	KeyRemoteHost,
	KeyRemotePort,
	KeyRemoteBasePath,
	KeyReleaseBaseURL,
	KeyManualsDirectory,
	KeyReleaseDirectory,
	KeySlackWebhookURL,
	KeyFoundationPluginPath,
}

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// SkipEnvironment ignores process environment variables.
	SkipEnvironment bool
}

// ApplicationConfiguration holds the publishing endpoints and build defaults.
type ApplicationConfiguration struct {
	RemoteHost           string             `mapstructure:"rsync_ssh_host" yaml:"rsync_ssh_host"`
	RemotePort           string             `mapstructure:"rsync_ssh_port" yaml:"rsync_ssh_port"`
	RemoteBasePath       string             `mapstructure:"rsync_remote_path_releases_folder" yaml:"rsync_remote_path_releases_folder"`
	ReleaseBaseURL       string             `mapstructure:"release_base_url" yaml:"release_base_url"`
	ManualsDirectory     string             `mapstructure:"manuals_dir" yaml:"manuals_dir"`
	ReleaseDirectory     string             `mapstructure:"release_dir" yaml:"release_dir"`
	SlackWebhookURL      string             `mapstructure:"slack_webhook_url" yaml:"slack_webhook_url"`
	FoundationPluginPath string             `mapstructure:"foundation_plugin_path" yaml:"foundation_plugin_path"`
	Build                BuildConfiguration `mapstructure:"build" yaml:"build"`
}

// BuildConfiguration holds defaults for the build command's flags.
type BuildConfiguration struct {
	OutputDirectory string `mapstructure:"output_dir" yaml:"output_dir"`
	Sync            *bool  `mapstructure:"sync" yaml:"sync"`
	Notify          *bool  `mapstructure:"notify" yaml:"notify"`
	Copy            *bool  `mapstructure:"copy" yaml:"copy"`
	AssetCheck      *bool  `mapstructure:"asset_check" yaml:"asset_check"`
}

// LoadApplicationConfiguration layers, from lowest to highest precedence, the
// global YAML file, the local (or explicit) YAML file, the working directory's
// dotenv file and the process environment.
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
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, "")
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath, "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	dotenvConfig, dotenvErr := loadConfigurationFromPath(filepath.Join(workingDirectory, utils.EnvironmentFileName), dotenvConfigType)
	if dotenvErr != nil {
		return ApplicationConfiguration{}, dotenvErr
	}
	merged = merged.Merge(dotenvConfig)

	if !options.SkipEnvironment {
		merged = merged.Merge(loadEnvironment())
	}
	return merged, nil
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
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

// loadConfigurationFromPath reads one file. A missing file yields an empty
// configuration. configType overrides detection by extension.
func loadConfigurationFromPath(path string, configType string) (ApplicationConfiguration, error) {
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
	if configType != "" {
		reader.SetConfigType(configType)
	}
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

func loadEnvironment() ApplicationConfiguration {
	reader := viper.New()
	for _, key := range environmentKeys {
		_ = reader.BindEnv(key, strings.ToUpper(key))
	}
	return ApplicationConfiguration{
		RemoteHost:           reader.GetString(KeyRemoteHost),
		RemotePort:           reader.GetString(KeyRemotePort),
		RemoteBasePath:       reader.GetString(KeyRemoteBasePath),
		ReleaseBaseURL:       reader.GetString(KeyReleaseBaseURL),
		ManualsDirectory:     reader.GetString(KeyManualsDirectory),
		ReleaseDirectory:     reader.GetString(KeyReleaseDirectory),
		SlackWebhookURL:      reader.GetString(KeySlackWebhookURL),
		FoundationPluginPath: reader.GetString(KeyFoundationPluginPath),
	}
}

// Merge overlays override onto the receiver returning the combined configuration.
// Empty strings and nil switches leave the receiver's value in place.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	overlayString(&result.RemoteHost, override.RemoteHost)
	overlayString(&result.RemotePort, override.RemotePort)
	overlayString(&result.RemoteBasePath, override.RemoteBasePath)
	overlayString(&result.ReleaseBaseURL, override.ReleaseBaseURL)
	overlayString(&result.ManualsDirectory, override.ManualsDirectory)
	overlayString(&result.ReleaseDirectory, override.ReleaseDirectory)
	overlayString(&result.SlackWebhookURL, override.SlackWebhookURL)
	overlayString(&result.FoundationPluginPath, override.FoundationPluginPath)
	result.Build = result.Build.merge(override.Build)
	return result
}

func (config BuildConfiguration) merge(override BuildConfiguration) BuildConfiguration {
	result := config
	overlayString(&result.OutputDirectory, override.OutputDirectory)
	if override.Sync != nil {
		result.Sync = cloneBool(override.Sync)
	}
	if override.Notify != nil {
		result.Notify = cloneBool(override.Notify)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	if override.AssetCheck != nil {
		result.AssetCheck = cloneBool(override.AssetCheck)
	}
	return result
}

// OutputDirectory resolves where archives are written: the build section, then
// the release directory, then ./builds.
func (config ApplicationConfiguration) OutputDirectory() string {
	switch {
	case config.Build.OutputDirectory != "":
		return config.Build.OutputDirectory
	case config.ReleaseDirectory != "":
		return config.ReleaseDirectory
	default:
		return utils.DefaultOutputDirectory
	}
}

// BoolOrDefault dereferences value, falling back when it is unset.
func BoolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func overlayString(target *string, override string) {
	if strings.TrimSpace(override) != "" {
		*target = strings.TrimSpace(override)
	}
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
