package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tyemirov/swrelease/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	templateIndentation = 2
	templateHeader      = "# swrelease configuration. Environment variables with the upper-case key names take precedence.\n"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultConfiguration is written by InitializeConfiguration.
func DefaultConfiguration() ApplicationConfiguration {
	enabled := true
	disabled := false
	return ApplicationConfiguration{
		RemotePort: "22",
		Build: BuildConfiguration{
			OutputDirectory: utils.DefaultOutputDirectory,
			Sync:            &enabled,
			Notify:          &disabled,
			Copy:            &disabled,
			AssetCheck:      &enabled,
		},
	}
}

// RenderTemplate encodes configuration as the YAML written by InitializeConfiguration.
func RenderTemplate(configuration ApplicationConfiguration) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteString(templateHeader)
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(templateIndentation)
	if err := encoder.Encode(configuration); err != nil {
		return nil, fmt.Errorf("encode configuration template: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode configuration template: %w", err)
	}
	return buffer.Bytes(), nil
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.GlobalConfigFileName)
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	template, templateErr := RenderTemplate(DefaultConfiguration())
	if templateErr != nil {
		return "", templateErr
	}
	// The file may hold a webhook secret.
	if err := os.WriteFile(destinationPath, template, 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}

	return destinationPath, nil
}
