// Package archive writes plugin release archives.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	archiveExtension = ".zip"
	versionMarker    = "-v"
)

// FileName returns the archive name for a plugin build, e.g. MyPlugin-v1.2.3.zip.
func FileName(pluginName string, version string) string {
	return pluginName + versionMarker + version + archiveExtension
}

// CreateZip packs pluginDirectory into destinationPath. Entries are stored below the
// directory's own name so that unpacking recreates the plugin folder. A failed
// archive is removed.
func CreateZip(pluginDirectory string, destinationPath string) (string, error) {
	absoluteDestination, absoluteError := filepath.Abs(destinationPath)
	if absoluteError != nil {
		return "", fmt.Errorf("resolve archive path %s: %w", destinationPath, absoluteError)
	}
	if makeDirectoryError := os.MkdirAll(filepath.Dir(absoluteDestination), 0o755); makeDirectoryError != nil {
		return "", fmt.Errorf("create archive directory: %w", makeDirectoryError)
	}
	archiveFile, createError := os.Create(absoluteDestination)
	if createError != nil {
		return "", fmt.Errorf("create archive %s: %w", absoluteDestination, createError)
	}

	zipWriter := zip.NewWriter(archiveFile)
	writeError := addTree(zipWriter, pluginDirectory)
	closeWriterError := zipWriter.Close()
	closeFileError := archiveFile.Close()
	for _, candidate := range []error{writeError, closeWriterError, closeFileError} {
		if candidate != nil {
			_ = os.Remove(absoluteDestination)
			return "", fmt.Errorf("write archive %s: %w", absoluteDestination, candidate)
		}
	}
	return absoluteDestination, nil
}

func addTree(zipWriter *zip.Writer, pluginDirectory string) error {
	rootName := filepath.Base(pluginDirectory)
	return filepath.WalkDir(pluginDirectory, func(currentPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		relativePath, relativeError := filepath.Rel(pluginDirectory, currentPath)
		if relativeError != nil {
			return relativeError
		}
		entryName := filepath.ToSlash(filepath.Join(rootName, relativePath))
		if entry.IsDir() {
			_, directoryError := zipWriter.Create(entryName + "/")
			return directoryError
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		fileInfo, infoError := entry.Info()
		if infoError != nil {
			return infoError
		}
		header, headerError := zip.FileInfoHeader(fileInfo)
		if headerError != nil {
			return headerError
		}
		header.Name = entryName
		header.Method = zip.Deflate
		entryWriter, createError := zipWriter.CreateHeader(header)
		if createError != nil {
			return createError
		}
		return copyFileInto(entryWriter, currentPath)
	})
}

func copyFileInto(destination io.Writer, sourcePath string) error {
	sourceFile, openError := os.Open(sourcePath)
	if openError != nil {
		return openError
	}
	defer sourceFile.Close()
	_, copyError := io.Copy(destination, sourceFile)
	return copyError
}
