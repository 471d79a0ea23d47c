// Package assets checks that compiled front-end bundles are newer than their sources.
package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/utils"
)

// Check pairs a source directory with the directory its compiled output lands in.
type Check struct {
	Kind               string
	SourceDirectory    string
	CompiledDirectory  string
	SourceExtensions   []string
	CompiledExtensions []string
}

// DefaultChecks covers the administration bundle and both storefront bundles.
var DefaultChecks = []Check{
	{
		Kind:               "Administration JS",
		SourceDirectory:    "src/Resources/app/administration/src",
		CompiledDirectory:  "src/Resources/public/administration/js",
		SourceExtensions:   []string{".ts", ".js"},
		CompiledExtensions: []string{".js"},
	},
	{
		Kind:               "Storefront JS",
		SourceDirectory:    "src/Resources/app/storefront/src",
		CompiledDirectory:  "src/Resources/public/storefront/js",
		SourceExtensions:   []string{".ts", ".js"},
		CompiledExtensions: []string{".js"},
	},
	{
		Kind:               "Storefront CSS",
		SourceDirectory:    "src/Resources/app/storefront/src",
		CompiledDirectory:  "src/Resources/public/storefront/css",
		SourceExtensions:   []string{".scss", ".css"},
		CompiledExtensions: []string{".css"},
	},
}

// Outdated describes a bundle whose newest source is newer than its newest compiled file.
type Outdated struct {
	Kind         string
	SourceFile   string
	SourceTime   time.Time
	CompiledFile string
	CompiledTime time.Time
}

func (outdated Outdated) String() string {
	return fmt.Sprintf("%s: source (%s) > compiled (%s)", outdated.Kind,
		utils.FormatTimestamp(outdated.SourceTime), utils.FormatTimestamp(outdated.CompiledTime))
}

type newestFile struct {
	path     string
	modified time.Time
	count    int
}

// VerifyCompiled runs DefaultChecks against pluginDirectory.
func VerifyCompiled(pluginDirectory string, logger *zap.Logger) ([]Outdated, error) {
	return Verify(pluginDirectory, DefaultChecks, logger)
}

// Verify reports every check whose sources were modified after the compiled output.
// A check is skipped when its source directory is absent, or when either side holds
// no matching files.
func Verify(pluginDirectory string, checks []Check, logger *zap.Logger) ([]Outdated, error) {
	var outdated []Outdated
	for _, check := range checks {
		sourcePath := filepath.Join(pluginDirectory, filepath.FromSlash(check.SourceDirectory))
		if !utils.IsDirectory(sourcePath) {
			logger.Debug("skipping asset check", zap.String("kind", check.Kind), zap.String("reason", "source directory not found"))
			continue
		}
		source, sourceError := findNewest(sourcePath, check.SourceExtensions)
		if sourceError != nil {
			return nil, sourceError
		}
		compiled, compiledError := findNewest(filepath.Join(pluginDirectory, filepath.FromSlash(check.CompiledDirectory)), check.CompiledExtensions)
		if compiledError != nil {
			return nil, compiledError
		}
		if source.count == 0 || compiled.count == 0 || !source.modified.After(compiled.modified) {
			continue
		}
		logger.Debug("outdated compiled asset",
			zap.String("kind", check.Kind),
			zap.String("source", source.path),
			zap.String("compiled", compiled.path),
		)
		outdated = append(outdated, Outdated{
			Kind:         check.Kind,
			SourceFile:   source.path,
			SourceTime:   source.modified,
			CompiledFile: compiled.path,
			CompiledTime: compiled.modified,
		})
	}
	return outdated, nil
}

// findNewest returns the most recently modified file below directory with one of
// the extensions. A missing directory yields an empty result.
func findNewest(directory string, extensions []string) (newestFile, error) {
	var newest newestFile
	if !utils.IsDirectory(directory) {
		return newest, nil
	}
	walkError := filepath.WalkDir(directory, func(currentPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if entry.IsDir() || !hasExtension(entry.Name(), extensions) {
			return nil
		}
		information, infoError := entry.Info()
		if infoError != nil {
			return nil
		}
		newest.count++
		if information.ModTime().After(newest.modified) {
			newest.modified = information.ModTime()
			newest.path = currentPath
		}
		return nil
	})
	if walkError != nil {
		return newestFile{}, fmt.Errorf("scan %s: %w", directory, walkError)
	}
	return newest, nil
}

func hasExtension(name string, extensions []string) bool {
	for _, extension := range extensions {
		if strings.HasSuffix(name, extension) {
			return true
		}
	}
	return false
}
