// Package workspace collects the files of a plugin tree that belong in a release.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/exclusion"
	"github.com/tyemirov/swrelease/internal/utils"
)

const (
	errorReadDirectoryFormat   = "read directory %s: %w"
	errorCreateDirectoryFormat = "create directory %s: %w"
	errorAbsolutePathFormat    = "resolve %s: %w"
	errorInsideSourceFormat    = "destination %s lies inside source %s"
)

// CopyResult counts what CopyTree did.
type CopyResult struct {
	Files       int
	Directories int
	Bytes       int64
	Excluded    []string
}

// CopyTree copies every non-excluded entry of sourceDirectory into
// destinationDirectory. Paths are matched relative to sourceDirectory; an excluded
// directory is not descended into. Symlinks and other irregular files are skipped.
func CopyTree(sourceDirectory string, destinationDirectory string, ruleSet *exclusion.RuleSet, logger *zap.Logger) (CopyResult, error) {
	absoluteSource, sourceError := filepath.Abs(sourceDirectory)
	if sourceError != nil {
		return CopyResult{}, fmt.Errorf(errorAbsolutePathFormat, sourceDirectory, sourceError)
	}
	absoluteDestination, destinationError := filepath.Abs(destinationDirectory)
	if destinationError != nil {
		return CopyResult{}, fmt.Errorf(errorAbsolutePathFormat, destinationDirectory, destinationError)
	}
	if relative, inside := relativeWithin(absoluteSource, absoluteDestination); inside {
		if relative == "." || ruleSet == nil || !ruleSet.IsExcluded(relative) {
			return CopyResult{}, fmt.Errorf(errorInsideSourceFormat, absoluteDestination, absoluteSource)
		}
	}
	if makeError := os.MkdirAll(absoluteDestination, 0o755); makeError != nil {
		return CopyResult{}, fmt.Errorf(errorCreateDirectoryFormat, absoluteDestination, makeError)
	}

	copier := treeCopier{sourceRoot: absoluteSource, ruleSet: ruleSet, logger: logger}
	if copyError := copier.copyDirectory(absoluteSource, absoluteDestination); copyError != nil {
		return copier.result, copyError
	}
	logger.Debug("copied plugin tree",
		zap.String("source", absoluteSource),
		zap.Int("files", copier.result.Files),
		zap.Int("excluded", len(copier.result.Excluded)),
		zap.String("size", utils.FormatFileSize(copier.result.Bytes)),
	)
	return copier.result, nil
}

// relativeWithin reports whether candidate lies at or below root.
func relativeWithin(root string, candidate string) (string, bool) {
	relative, relativeError := filepath.Rel(root, candidate)
	if relativeError != nil {
		return "", false
	}
	relative = filepath.ToSlash(relative)
	if relative == ".." || strings.HasPrefix(relative, "../") {
		return "", false
	}
	return relative, true
}

type treeCopier struct {
	sourceRoot string
	ruleSet    *exclusion.RuleSet
	logger     *zap.Logger
	result     CopyResult
}

func (copier *treeCopier) copyDirectory(sourcePath string, destinationPath string) error {
	entries, readError := os.ReadDir(sourcePath)
	if readError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, sourcePath, readError)
	}
	for _, entry := range entries {
		childSource := filepath.Join(sourcePath, entry.Name())
		relativePath := utils.NormalizeSlashes(utils.RelativePathOrSelf(childSource, copier.sourceRoot))
		if copier.ruleSet != nil && copier.ruleSet.IsExcluded(relativePath) {
			copier.result.Excluded = append(copier.result.Excluded, relativePath)
			copier.logger.Debug("excluded", zap.String("path", relativePath))
			continue
		}
		childDestination := filepath.Join(destinationPath, entry.Name())
		switch {
		case entry.IsDir():
			if makeError := os.MkdirAll(childDestination, 0o755); makeError != nil {
				return fmt.Errorf(errorCreateDirectoryFormat, childDestination, makeError)
			}
			copier.result.Directories++
			if copyError := copier.copyDirectory(childSource, childDestination); copyError != nil {
				return copyError
			}
		case entry.Type().IsRegular():
			if copyError := utils.CopyFile(childSource, childDestination); copyError != nil {
				return copyError
			}
			if information, infoError := entry.Info(); infoError == nil {
				copier.result.Bytes += information.Size()
			}
			copier.result.Files++
		default:
			copier.logger.Debug("skipping irregular file", zap.String("path", relativePath))
		}
	}
	return nil
}
