package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyemirov/swrelease/internal/config"
)

const (
	configUse                  = "config"
	configShortDescription     = "manage swrelease configuration"
	configInitUse              = "init"
	configInitShortDescription = "write a default configuration file"
	configInitLongDescription  = `init writes ./.swrelease.yaml, or ~/.swrelease/config.yaml with --global.
An existing file is only replaced with --force.`

	globalFlagName        = "global"
	forceFlagName         = "force"
	globalFlagDescription = "write the global configuration file"
	forceFlagDescription  = "overwrite an existing configuration file"

	configWrittenFormat = "Configuration written to %s\n"
)

func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	configCommand.AddCommand(createConfigInitCommand())
	return configCommand
}

func createConfigInitCommand() *cobra.Command {
	var global, force bool
	command := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Long:  configInitLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(command.OutOrStdout(), configWrittenFormat, writtenPath)
			return nil
		},
	}
	registerBooleanFlag(command.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(command.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return command
}
