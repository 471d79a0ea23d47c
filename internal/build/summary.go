package build

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tyemirov/swrelease/internal/utils"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle   = lipgloss.NewStyle().Italic(true).Foreground(colorMuted)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSuccess).Padding(0, 1)
)

// RenderSummary draws the closing panel listing every archive and where it went.
func RenderSummary(result Result) string {
	var lines []string
	lines = append(lines, titleStyle.Render("Plugin successfully built!"))
	for _, artifact := range result.Artifacts {
		lines = append(lines, "")
		lines = append(lines, field("Plugin", artifact.Plugin))
		lines = append(lines, field("Version", "v"+artifact.Version))
		lines = append(lines, field("Archive", fmt.Sprintf("%s (%s)", filepath.Base(artifact.ArchivePath), utils.FormatFileSize(artifact.Size))))
		lines = append(lines, field("Location", artifact.ArchivePath))
		if artifact.Foundation != nil {
			lines = append(lines, field("Foundation", fmt.Sprintf("%d files injected as %s", artifact.Foundation.CopiedFiles, artifact.Foundation.Namespace)))
		}
		switch {
		case artifact.RemotePath != "":
			lines = append(lines, titleStyle.Render("Successfully synced to remote server: "+artifact.RemotePath))
		case result.SyncSkipped:
			lines = append(lines, warningStyle.Render("Remote sync was disabled"))
		}
		if artifact.DownloadURL != "" {
			lines = append(lines, field("Download", artifact.DownloadURL))
		}
	}
	if result.VariantError != nil {
		lines = append(lines, "", errorStyle.Render("Variant build failed: "+result.VariantError.Error()))
	}
	if len(result.Manuals) > 0 {
		lines = append(lines, "", field("Manuals", strings.Join(result.Manuals, ", ")))
	}
	if result.Copied {
		lines = append(lines, mutedStyle.Render("Copied to clipboard."))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func field(label string, value string) string {
	return labelStyle.Render(label+":") + " " + value
}
