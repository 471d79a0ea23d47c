package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/composer"
	"github.com/tyemirov/swrelease/internal/identity"
)

const (
	variantNameUse              = "variant-name"
	variantNameShortDescription = "show the identifiers a variant build would use"
	variantNameLongDescription  = `variant-name derives the renamed identifiers for --prefix and --suffix
from the plugin class declared in composer.json. Nothing is written.`

	formColumnLabel     = "Form"
	originalColumnLabel = "Original"
	variantColumnLabel  = "Variant"
)

var errVariantNotRequested = errors.New("a variant needs --prefix or --suffix")

func createVariantNameCommand(app *application) *cobra.Command {
	var (
		sourceDirectory string
		spec            identity.VariantSpec
	)
	command := &cobra.Command{
		Use:   variantNameUse,
		Short: variantNameShortDescription,
		Long:  variantNameLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if !spec.Enabled() {
				return errVariantNotRequested
			}
			document, loadError := composer.Load(sourceDirectory)
			if loadError != nil {
				return loadError
			}
			original, identityError := document.Identity()
			if identityError != nil {
				return identityError
			}
			rewriteMap := identity.Derive(original, spec)
			app.logger.Debug("derived variant", zap.Stringer("spec", spec))
			fmt.Fprintln(command.OutOrStdout(), renderRewriteMap(rewriteMap))
			return nil
		},
	}
	command.Flags().StringVar(&sourceDirectory, sourceFlagName, defaultSourceDirectory, sourceFlagDescription)
	command.Flags().StringVar(&spec.Prefix, prefixFlagName, "", prefixFlagDescription)
	command.Flags().StringVar(&spec.Suffix, suffixFlagName, "", suffixFlagDescription)
	return command
}

func renderRewriteMap(rewriteMap identity.RewriteMap) string {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row int, column int) lipgloss.Style { return cellStyle }).
		Headers(formColumnLabel, originalColumnLabel, variantColumnLabel).
		Rows(
			[]string{"Name", rewriteMap.OldName, rewriteMap.NewName},
			[]string{"Namespace", rewriteMap.OldNamespace, rewriteMap.NewNamespace},
			[]string{"Plugin class", rewriteMap.OldFQCN, rewriteMap.NewFQCN},
			[]string{"Composer package", rewriteMap.OldComposerKebab, rewriteMap.NewComposerKebab},
			[]string{"Asset folder", rewriteMap.OldAssetKebab, rewriteMap.NewAssetKebab},
		).
		String()
}
