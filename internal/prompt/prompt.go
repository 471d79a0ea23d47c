// Package prompt asks the operator for release decisions.
package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/tyemirov/swrelease/internal/version"
)

const bumpTitleFormat = "Current Version is %s - choose the version increment method:"

// ErrNotInteractive is returned when no terminal is attached to stdin.
var ErrNotInteractive = errors.New("no terminal attached")

// Interactive reports whether file is a terminal.
func Interactive(file *os.File) bool {
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// BumpOptions lists the selectable bumps for current, titled with the version each
// would produce.
func BumpOptions(current string) ([]huh.Option[version.Bump], error) {
	choices, choicesError := version.Choices(current)
	if choicesError != nil {
		return nil, choicesError
	}
	options := make([]huh.Option[version.Bump], 0, len(choices))
	for _, choice := range choices {
		options = append(options, huh.NewOption(choice.Title(), choice.Bump))
	}
	return options, nil
}

// ChooseVersionBump shows a selection of bumps, defaulting to no update.
func ChooseVersionBump(current string) (version.Bump, error) {
	if !Interactive(os.Stdin) {
		return version.BumpNone, ErrNotInteractive
	}
	options, optionsError := BumpOptions(current)
	if optionsError != nil {
		return version.BumpNone, optionsError
	}
	selected := version.BumpNone
	selection := huh.NewSelect[version.Bump]().
		Title(fmt.Sprintf(bumpTitleFormat, current)).
		Options(options...).
		Value(&selected)
	if runError := huh.NewForm(huh.NewGroup(selection)).Run(); runError != nil {
		return version.BumpNone, fmt.Errorf("version prompt: %w", runError)
	}
	return selected, nil
}
