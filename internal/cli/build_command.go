package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tyemirov/swrelease/internal/build"
	"github.com/tyemirov/swrelease/internal/config"
	"github.com/tyemirov/swrelease/internal/identity"
	"github.com/tyemirov/swrelease/internal/notify"
	"github.com/tyemirov/swrelease/internal/prompt"
	"github.com/tyemirov/swrelease/internal/remote"
	"github.com/tyemirov/swrelease/internal/services/clipboard"
	"github.com/tyemirov/swrelease/internal/version"
)

const (
	buildUse              = "build"
	buildShortDescription = "package a plugin into release archives"
	buildLongDescription  = `build packages the plugin in --source into <output>/<Name>-v<version>.zip.
Development files, .gitignore matches and .sw-zip-blacklist entries are excluded.
With --prefix or --suffix a renamed variant is packaged next to the base archive.
Without --version-increment the version bump is asked for when a terminal is attached.`

	sourceFlagName           = "source"
	outputDirectoryFlagName  = "output-dir"
	versionIncrementFlagName = "version-increment"
	prefixFlagName           = "prefix"
	suffixFlagName           = "suffix"
	withFoundationFlagName   = "with-foundation"
	foundationPathFlagName   = "foundation-path"
	noSyncFlagName           = "no-sync"
	notifyFlagName           = "notify"
	copyFlagName             = "copy"
	skipAssetCheckFlagName   = "skip-asset-check"

	sourceFlagDescription           = "plugin directory containing composer.json"
	outputDirectoryFlagDescription  = "directory receiving the archives (default from configuration, else ./builds)"
	versionIncrementFlagDescription = "version increment: none, patch, minor or major"
	prefixFlagDescription           = "prefix prepended to the plugin name of the variant"
	suffixFlagDescription           = "suffix appended to the plugin name of the variant"
	withFoundationFlagDescription   = "embed the foundation companion even when composer.json does not require it"
	foundationPathFlagDescription   = "path of the foundation companion plugin"
	noSyncFlagDescription           = "do not upload archives to the release server"
	notifyFlagDescription           = "announce the release in Slack"
	copyFlagDescription             = "copy the download URL or archive path to the clipboard"
	skipAssetCheckFlagDescription   = "do not compare compiled assets with their sources"
)

type buildFlags struct {
	source           string
	outputDirectory  string
	versionIncrement string
	prefix           string
	suffix           string
	withFoundation   bool
	foundationPath   string
	noSync           bool
	notify           bool
	copy             bool
	skipAssetCheck   bool
}

func createBuildCommand(app *application) *cobra.Command {
	flags := &buildFlags{}
	command := &cobra.Command{
		Use:   buildUse,
		Short: buildShortDescription,
		Long:  buildLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configPath})
			if loadError != nil {
				return loadError
			}
			options, optionsError := buildOptions(command, flags, configuration)
			if optionsError != nil {
				return optionsError
			}
			builder := newBuilder(app, command, configuration, flags.versionIncrement == "")
			result, runError := builder.Run(command.Context(), options)
			if len(result.Artifacts) > 0 {
				fmt.Fprintln(command.OutOrStdout(), build.RenderSummary(result))
			}
			return runError
		},
	}
	bindBuildFlags(command.Flags(), flags)
	return command
}

func bindBuildFlags(flagSet *pflag.FlagSet, flags *buildFlags) {
	flagSet.StringVar(&flags.source, sourceFlagName, defaultSourceDirectory, sourceFlagDescription)
	flagSet.StringVar(&flags.outputDirectory, outputDirectoryFlagName, "", outputDirectoryFlagDescription)
	flagSet.StringVar(&flags.versionIncrement, versionIncrementFlagName, "", versionIncrementFlagDescription)
	flagSet.StringVar(&flags.prefix, prefixFlagName, "", prefixFlagDescription)
	flagSet.StringVar(&flags.suffix, suffixFlagName, "", suffixFlagDescription)
	flagSet.StringVar(&flags.foundationPath, foundationPathFlagName, "", foundationPathFlagDescription)
	registerBooleanFlag(flagSet, &flags.withFoundation, withFoundationFlagName, false, withFoundationFlagDescription)
	registerBooleanFlag(flagSet, &flags.noSync, noSyncFlagName, false, noSyncFlagDescription)
	registerBooleanFlag(flagSet, &flags.notify, notifyFlagName, false, notifyFlagDescription)
	registerBooleanFlag(flagSet, &flags.copy, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(flagSet, &flags.skipAssetCheck, skipAssetCheckFlagName, false, skipAssetCheckFlagDescription)
}

// buildOptions combines flags with configuration. A flag given on the command
// line always wins over the configured default.
func buildOptions(command *cobra.Command, flags *buildFlags, configuration config.ApplicationConfiguration) (build.Options, error) {
	options := build.Options{
		SourceDirectory:  flags.source,
		OutputDirectory:  configuration.OutputDirectory(),
		Variant:          identity.VariantSpec{Prefix: flags.prefix, Suffix: flags.suffix},
		ForceFoundation:  flags.withFoundation,
		FoundationPath:   configuration.FoundationPluginPath,
		ManualsDirectory: configuration.ManualsDirectory,
		ReleaseBaseURL:   configuration.ReleaseBaseURL,
		Sync:             config.BoolOrDefault(configuration.Build.Sync, true) && !flags.noSync,
		Notify:           config.BoolOrDefault(configuration.Build.Notify, false),
		Copy:             config.BoolOrDefault(configuration.Build.Copy, false),
		SkipAssetCheck:   !config.BoolOrDefault(configuration.Build.AssetCheck, true),
	}
	changed := command.Flags().Changed
	if changed(outputDirectoryFlagName) {
		options.OutputDirectory = flags.outputDirectory
	}
	if changed(foundationPathFlagName) {
		options.FoundationPath = flags.foundationPath
	}
	if changed(notifyFlagName) {
		options.Notify = flags.notify
	}
	if changed(copyFlagName) {
		options.Copy = flags.copy
	}
	if changed(skipAssetCheckFlagName) {
		options.SkipAssetCheck = flags.skipAssetCheck
	}
	if flags.versionIncrement != "" {
		bump, parseError := version.ParseBump(flags.versionIncrement)
		if parseError != nil {
			return build.Options{}, fmt.Errorf("--%s: %w", versionIncrementFlagName, parseError)
		}
		options.Bump = bump
	}
	return options, nil
}

func newBuilder(app *application, command *cobra.Command, configuration config.ApplicationConfiguration, promptForBump bool) build.Builder {
	builder := build.Builder{
		Logger: app.logger,
		Copier: clipboard.NewService(),
	}
	remoteConfig := remote.Config{
		Host:     configuration.RemoteHost,
		Port:     configuration.RemotePort,
		BasePath: configuration.RemoteBasePath,
	}
	if remoteConfig.Enabled() {
		builder.Uploader = remote.Syncer{
			Config: remoteConfig,
			Runner: remote.ExecRunner{Output: command.ErrOrStderr()},
			Logger: app.logger,
		}
	}
	if configuration.SlackWebhookURL != "" {
		builder.Notifier = notify.SlackNotifier{WebhookURL: configuration.SlackWebhookURL}
	}
	if promptForBump && prompt.Interactive(os.Stdin) {
		builder.Chooser = prompt.ChooseVersionBump
	}
	return builder
}
