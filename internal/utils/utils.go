// Package utils contains general helper functions used across the release builder.
package utils

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)
	absolutePath, err := filepath.Abs(cleanPath)
	if err == nil {
		cleanPath = absolutePath
	}

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// NormalizeSlashes converts both separator styles to forward slashes.
func NormalizeSlashes(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), "\\", pathSegmentSeparator)
}

// PathExists reports whether path can be stat'ed.
func PathExists(path string) bool {
	_, statError := os.Stat(path)
	return statError == nil
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(path string) bool {
	fileInformation, statError := os.Stat(path)
	return statError == nil && fileInformation.IsDir()
}

// CopyFile copies a single regular file, preserving its permission bits.
//
// #nosec G304
func CopyFile(sourcePath string, destinationPath string) error {
	sourceInformation, statError := os.Stat(sourcePath)
	if statError != nil {
		return fmt.Errorf("stat %s: %w", sourcePath, statError)
	}
	sourceHandle, openError := os.Open(sourcePath)
	if openError != nil {
		return fmt.Errorf("open %s: %w", sourcePath, openError)
	}
	defer sourceHandle.Close()

	if makeDirectoryError := os.MkdirAll(filepath.Dir(destinationPath), 0o755); makeDirectoryError != nil {
		return fmt.Errorf("create directory for %s: %w", destinationPath, makeDirectoryError)
	}
	destinationHandle, createError := os.OpenFile(destinationPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, sourceInformation.Mode().Perm())
	if createError != nil {
		return fmt.Errorf("create %s: %w", destinationPath, createError)
	}
	if _, copyError := io.Copy(destinationHandle, sourceHandle); copyError != nil {
		destinationHandle.Close()
		return fmt.Errorf("copy %s to %s: %w", sourcePath, destinationPath, copyError)
	}
	return destinationHandle.Close()
}

// CopyDirectory recursively copies sourceDirectory into destinationDirectory, merging
// with any content already present there.
func CopyDirectory(sourceDirectory string, destinationDirectory string) (int, error) {
	copiedFiles := 0
	walkError := filepath.WalkDir(sourceDirectory, func(currentPath string, directoryEntry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		relativePath, relativeError := filepath.Rel(sourceDirectory, currentPath)
		if relativeError != nil {
			return relativeError
		}
		targetPath := filepath.Join(destinationDirectory, relativePath)
		if directoryEntry.IsDir() {
			return os.MkdirAll(targetPath, 0o755)
		}
		if !directoryEntry.Type().IsRegular() {
			return nil
		}
		if copyError := CopyFile(currentPath, targetPath); copyError != nil {
			return copyError
		}
		copiedFiles++
		return nil
	})
	return copiedFiles, walkError
}
