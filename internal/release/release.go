// Package release renders the release summary shipped inside every archive.
package release

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tyemirov/swrelease/internal/utils"
)

// Style selects how the summary table is drawn.
type Style int

const (
	// StyleGrid separates keys and values with a column rule.
	StyleGrid Style = iota
	// StylePanel draws only the outer frame; used in chat messages.
	StylePanel
)

const versionPrefix = "v"

// Info describes one built package.
type Info struct {
	Plugin  string
	Version string
	Created time.Time
	Branch  string
	Commit  string
}

// Rows lists the summary as key/value pairs.
func (info Info) Rows() [][]string {
	return [][]string{
		{"Plugin", info.Plugin},
		{"Version", versionPrefix + info.Version},
		{"Created", utils.FormatReleaseTimestamp(info.Created)},
		{"Branch", info.Branch},
		{"Commit ID", info.Commit},
	}
}

// Render draws the summary as a box table.
func (info Info) Render(style Style) string {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	summaryTable := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		BorderColumn(style == StyleGrid).
		StyleFunc(func(row int, column int) lipgloss.Style { return cellStyle }).
		Rows(info.Rows()...)
	return summaryTable.String()
}

// WriteFile stores the grid rendering as release_info.txt inside pluginDirectory.
func (info Info) WriteFile(pluginDirectory string) (string, error) {
	infoPath := filepath.Join(pluginDirectory, utils.ReleaseInfoFileName)
	if writeError := os.WriteFile(infoPath, []byte(info.Render(StyleGrid)+"\n"), 0o644); writeError != nil {
		return "", fmt.Errorf("write %s: %w", infoPath, writeError)
	}
	return infoPath, nil
}
