// Package manual publishes per-language plugin manuals.
package manual

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/utils"
)

// Copy mirrors every language directory of <pluginDirectory>/manual into
// <manualsDirectory>/<language>/<pluginName>/<version>, merging with existing
// content. It returns the copied languages in sorted order; a plugin without
// manuals copies nothing.
func Copy(pluginDirectory string, manualsDirectory string, pluginName string, version string, logger *zap.Logger) ([]string, error) {
	sourceDirectory := filepath.Join(pluginDirectory, utils.ManualDirectoryName)
	if !utils.IsDirectory(sourceDirectory) {
		logger.Debug("no manual directory, skipping", zap.String("path", sourceDirectory))
		return nil, nil
	}
	entries, readError := os.ReadDir(sourceDirectory)
	if readError != nil {
		return nil, fmt.Errorf("read %s: %w", sourceDirectory, readError)
	}
	var languages []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		targetDirectory := filepath.Join(manualsDirectory, entry.Name(), pluginName, version)
		if makeError := os.MkdirAll(targetDirectory, 0o755); makeError != nil {
			return languages, fmt.Errorf("create %s: %w", targetDirectory, makeError)
		}
		if _, copyError := utils.CopyDirectory(filepath.Join(sourceDirectory, entry.Name()), targetDirectory); copyError != nil {
			return languages, fmt.Errorf("copy %s manual: %w", entry.Name(), copyError)
		}
		logger.Info("copied manual", zap.String("language", entry.Name()), zap.String("target", targetDirectory))
		languages = append(languages, entry.Name())
	}
	sort.Strings(languages)
	return languages, nil
}
