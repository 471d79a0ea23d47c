package composer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tyemirov/swrelease/internal/utils"
)

const (
	indentation           = "    "
	documentPermissions   = 0o644
	readDocumentFormat    = "read %s: %w"
	decodeDocumentFormat  = "decode %s: %w"
	encodeDocumentFormat  = "encode %s: %w"
	writeDocumentFormat   = "write %s: %w"
	versionPrefix         = "v"
	missingVersionMessage = "no version declared in %s"
)

// ErrNotFound is returned when a directory has no composer.json.
var ErrNotFound = errors.New("composer.json not found")

// PluginInfo summarizes the identity and version of a plugin directory.
type PluginInfo struct {
	Name string
	// Version has any leading "v" removed; RawVersion is what the document declares.
	Version     string
	RawVersion  string
	PluginClass string
	PackageName string
}

// Path returns the location of composer.json inside directory.
func Path(directory string) string {
	return filepath.Join(directory, utils.ComposerFileName)
}

// Load reads and decodes the composer.json file inside directory.
func Load(directory string) (*Document, error) {
	documentPath := Path(directory)
	content, readError := os.ReadFile(documentPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, directory)
		}
		return nil, fmt.Errorf(readDocumentFormat, documentPath, readError)
	}
	var document Document
	if decodeError := json.Unmarshal(content, &document); decodeError != nil {
		return nil, fmt.Errorf(decodeDocumentFormat, documentPath, decodeError)
	}
	return &document, nil
}

// Encode renders document with four-space indentation, unescaped non-ASCII and HTML
// characters, and a trailing newline.
func Encode(document *Document) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indentation)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return nil, encodeError
	}
	return buffer.Bytes(), nil
}

// Save writes document back to the composer.json inside directory.
func Save(directory string, document *Document) error {
	documentPath := Path(directory)
	content, encodeError := Encode(document)
	if encodeError != nil {
		return fmt.Errorf(encodeDocumentFormat, documentPath, encodeError)
	}
	if writeError := os.WriteFile(documentPath, content, documentPermissions); writeError != nil {
		return fmt.Errorf(writeDocumentFormat, documentPath, writeError)
	}
	return nil
}

// ReadPluginInfo loads composer.json from directory and extracts the plugin identity.
func ReadPluginInfo(directory string) (PluginInfo, error) {
	document, loadError := Load(directory)
	if loadError != nil {
		return PluginInfo{}, loadError
	}
	pluginIdentity, identityError := document.Identity()
	if identityError != nil {
		return PluginInfo{}, fmt.Errorf("%s: %w", Path(directory), identityError)
	}
	if strings.TrimSpace(document.Version) == "" {
		return PluginInfo{}, fmt.Errorf(missingVersionMessage, Path(directory))
	}
	return PluginInfo{
		Name:        pluginIdentity.Name,
		Version:     strings.TrimPrefix(document.Version, versionPrefix),
		RawVersion:  document.Version,
		PluginClass: pluginIdentity.FQCN,
		PackageName: document.Name,
	}, nil
}

// HasDependency reports whether the composer.json in directory requires packageName.
// A directory without composer.json has no dependencies.
func HasDependency(directory string, packageName string) (bool, error) {
	document, loadError := Load(directory)
	if loadError != nil {
		if errors.Is(loadError, ErrNotFound) {
			return false, nil
		}
		return false, loadError
	}
	return document.HasRequirement(packageName), nil
}

// UpdateVersion rewrites the version member of composer.json in directory.
func UpdateVersion(directory string, version string) error {
	document, loadError := Load(directory)
	if loadError != nil {
		return loadError
	}
	document.Version = version
	return Save(directory, document)
}
