// Package remote uploads release archives to the release server over rsync.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultPort is used when no SSH port is configured.
const DefaultPort = "22"

const rsyncBinary = "rsync"

// ErrNotConfigured is returned by Sync when host or base path is missing.
var ErrNotConfigured = errors.New("remote sync is not configured")

// Config locates the release folder on the server.
type Config struct {
	Host     string
	Port     string
	BasePath string
}

// Enabled reports whether both host and base path are set.
func (config Config) Enabled() bool {
	return strings.TrimSpace(config.Host) != "" && strings.TrimSpace(config.BasePath) != ""
}

func (config Config) port() string {
	if strings.TrimSpace(config.Port) == "" {
		return DefaultPort
	}
	return strings.TrimSpace(config.Port)
}

// PluginDirectory returns the server-side folder for pluginName, with a trailing slash.
func (config Config) PluginDirectory(pluginName string) string {
	return strings.TrimRight(config.BasePath, "/") + "/" + pluginName + "/"
}

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, arguments ...string) error
}

// ExecRunner runs commands with os/exec, streaming their output to Output.
type ExecRunner struct {
	Output io.Writer
}

// Run starts the command and waits for it.
func (runner ExecRunner) Run(ctx context.Context, name string, arguments ...string) error {
	command := exec.CommandContext(ctx, name, arguments...)
	if runner.Output != nil {
		command.Stdout = runner.Output
		command.Stderr = runner.Output
	}
	return command.Run()
}

// Syncer uploads archives with rsync.
type Syncer struct {
	Config Config
	Runner Runner
	Logger *zap.Logger
}

// Arguments builds the rsync invocation uploading archivePath for pluginName.
// The remote folder is created on demand.
func (config Config) Arguments(archivePath string, pluginName string) []string {
	pluginDirectory := config.PluginDirectory(pluginName)
	return []string{
		"-av",
		"--progress",
		"-e", "ssh -p " + config.port(),
		"--rsync-path", "mkdir -p " + pluginDirectory + " && rsync",
		archivePath,
		config.Host + ":" + pluginDirectory + filepath.Base(archivePath),
	}
}

// Sync uploads archivePath and returns the remote destination as host:path.
func (syncer Syncer) Sync(ctx context.Context, archivePath string, pluginName string) (string, error) {
	if !syncer.Config.Enabled() {
		return "", ErrNotConfigured
	}
	arguments := syncer.Config.Arguments(archivePath, pluginName)
	destination := arguments[len(arguments)-1]
	syncer.Logger.Debug("running rsync", zap.Strings("arguments", arguments))
	if runError := syncer.Runner.Run(ctx, rsyncBinary, arguments...); runError != nil {
		return "", fmt.Errorf("rsync %s to %s: %w", filepath.Base(archivePath), destination, runError)
	}
	syncer.Logger.Info("synced archive", zap.String("destination", destination))
	return destination, nil
}

// DownloadURL joins the public release base URL with the plugin folder and
// archive name. An empty base yields an empty URL.
func DownloadURL(baseURL string, pluginName string, archiveName string) string {
	if strings.TrimSpace(baseURL) == "" {
		return ""
	}
	joined, joinError := url.JoinPath(baseURL, pluginName, archiveName)
	if joinError != nil {
		return strings.TrimRight(baseURL, "/") + "/" + pluginName + "/" + archiveName
	}
	return joined
}
