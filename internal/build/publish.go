package build

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tyemirov/swrelease/internal/manual"
	"github.com/tyemirov/swrelease/internal/notify"
	"github.com/tyemirov/swrelease/internal/release"
	"github.com/tyemirov/swrelease/internal/remote"
	"github.com/tyemirov/swrelease/internal/services/clipboard"
)

// publish uploads every archive and copies the manuals concurrently. Each goroutine
// writes only its own artifact slot.
func (builder Builder) publish(ctx context.Context, sourceDirectory string, options Options, result *Result, logger *zap.Logger) error {
	group, groupContext := errgroup.WithContext(ctx)

	syncEnabled := options.Sync && builder.Uploader != nil
	result.SyncSkipped = !syncEnabled
	if !syncEnabled {
		logger.Debug("remote sync disabled")
	}
	for index := range result.Artifacts {
		artifact := &result.Artifacts[index]
		archiveName := filepath.Base(artifact.ArchivePath)
		artifact.DownloadURL = remote.DownloadURL(options.ReleaseBaseURL, artifact.Plugin, archiveName)
		if !syncEnabled {
			continue
		}
		group.Go(func() error {
			remotePath, syncError := builder.Uploader.Sync(groupContext, artifact.ArchivePath, artifact.Plugin)
			if syncError != nil {
				return syncError
			}
			artifact.RemotePath = remotePath
			return nil
		})
	}

	var languages []string
	if strings.TrimSpace(options.ManualsDirectory) != "" {
		pluginName := result.Plugin.Name
		pluginVersion := result.Version
		group.Go(func() error {
			copied, copyError := manual.Copy(sourceDirectory, options.ManualsDirectory, pluginName, pluginVersion, logger)
			languages = copied
			return copyError
		})
	}

	waitError := group.Wait()
	result.Manuals = languages
	return waitError
}

// announce posts one message per artifact. Failures are warnings.
func (builder Builder) announce(ctx context.Context, options Options, result *Result, logger *zap.Logger) {
	if !options.Notify {
		return
	}
	if builder.Notifier == nil {
		logger.Warn("notification requested but no webhook is configured")
		return
	}
	for _, artifact := range result.Artifacts {
		announcement := notify.Release{
			Info: release.Info{
				Plugin:  artifact.Plugin,
				Version: artifact.Version,
				Created: builder.now(),
				Branch:  result.Git.Branch,
				Commit:  result.Git.Commit,
			},
			DownloadURL: artifact.DownloadURL,
		}
		if notifyError := builder.Notifier.Notify(ctx, announcement); notifyError != nil {
			logger.Warn("failed to send notification", zap.String("plugin", artifact.Plugin), zap.Error(notifyError))
			continue
		}
		result.Notified++
	}
}

func (builder Builder) copyToClipboard(options Options, result *Result, logger *zap.Logger) {
	if !options.Copy || builder.Copier == nil {
		return
	}
	var downloadURLs, archivePaths []string
	for _, artifact := range result.Artifacts {
		if artifact.DownloadURL != "" {
			downloadURLs = append(downloadURLs, artifact.DownloadURL)
		}
		archivePaths = append(archivePaths, artifact.ArchivePath)
	}
	if copyError := builder.Copier.Copy(clipboard.ReleaseText(downloadURLs, archivePaths)); copyError != nil {
		logger.Warn("failed to copy to clipboard", zap.Error(copyError))
		return
	}
	result.Copied = true
}
