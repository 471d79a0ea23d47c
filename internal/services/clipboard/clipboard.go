// Package clipboard places release links on the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when the platform offers no clipboard utility.
var ErrUnavailable = errors.New("no clipboard utility available")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// ReleaseText picks what is copied after a build: the download links when known,
// else the archive paths, one per line.
func ReleaseText(downloadURLs []string, archivePaths []string) string {
	lines := downloadURLs
	if len(lines) == 0 {
		lines = archivePaths
	}
	return strings.Join(lines, "\n")
}

var _ Copier = (*Service)(nil)
