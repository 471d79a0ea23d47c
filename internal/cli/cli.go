// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/utils"
)

const (
	versionFlagName        = "version"
	verboseFlagName        = "verbose"
	verboseFlagShorthand   = "v"
	configFlagName         = "config"
	versionTemplate        = "swrelease version: %s\n"
	rootUse                = "swrelease"
	rootShortDescription   = "package Shopware plugins for release"
	rootLongDescription    = `swrelease packages a Shopware plugin into a release archive.
It excludes development files, optionally bumps and tags the version, builds renamed
variants, embeds the foundation companion and publishes the result.
Use --version to print the application version.`
	versionFlagDescription = "display application version"
	verboseFlagDescription = "enable debug output"
	configFlagDescription  = "configuration file (default ./.swrelease.yaml)"
	defaultSourceDirectory = "."
)

// application carries state shared by every subcommand.
type application struct {
	verbose    bool
	configPath string
	logger     *zap.Logger
}

// Execute runs the swrelease application.
func Execute(ctx context.Context) error {
	rootCommand := createRootCommand()
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	app := &application{}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			logger, loggerError := utils.NewApplicationLogger(app.verbose)
			if loggerError != nil {
				return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
			}
			app.logger = logger
			return nil
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().BoolVarP(&app.verbose, verboseFlagName, verboseFlagShorthand, false, verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createBuildCommand(app),
		createVariantNameCommand(app),
		createConfigCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}
