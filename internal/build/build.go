// Package build runs the release workflow: checks, versioning, the base and variant
// packages, publishing and notification.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/assets"
	"github.com/tyemirov/swrelease/internal/composer"
	"github.com/tyemirov/swrelease/internal/exclusion"
	"github.com/tyemirov/swrelease/internal/foundation"
	"github.com/tyemirov/swrelease/internal/git"
	"github.com/tyemirov/swrelease/internal/identity"
	"github.com/tyemirov/swrelease/internal/notify"
	"github.com/tyemirov/swrelease/internal/services/clipboard"
	"github.com/tyemirov/swrelease/internal/version"
)

const (
	temporaryDirectoryPattern = "swrelease-"
	baseBuildDirectory        = "base"
	variantBuildDirectory     = "variant"
	unknownRevision           = "unknown"
	bumpCommitMessageFormat   = "bump to version %s"

	errorOutdatedAssetsFormat = "%w: %s"
	errorVariantFormat        = "variant %s: %w"
)

var (
	// ErrOutdatedAssets is returned when compiled bundles are older than their sources.
	ErrOutdatedAssets = errors.New("compiled assets are outdated")
	// ErrCompanionNotConfigured is returned when injection is needed but no companion path is set.
	ErrCompanionNotConfigured = errors.New("foundation injection requested but no companion plugin path is configured")
	// ErrBumpWithoutRepository is returned when a version bump is requested outside a repository.
	ErrBumpWithoutRepository = errors.New("version bump requires a git repository")
)

// Uploader publishes an archive and returns its remote location.
type Uploader interface {
	Sync(ctx context.Context, archivePath string, pluginName string) (string, error)
}

// Notifier announces a release.
type Notifier interface {
	Notify(ctx context.Context, announcement notify.Release) error
}

// BumpChooser asks for the bump to apply to current.
type BumpChooser func(current string) (version.Bump, error)

// Options selects what one run builds and publishes.
type Options struct {
	SourceDirectory string
	OutputDirectory string
	// Bump applies a version increment. Empty defers to the builder's chooser.
	Bump             version.Bump
	Variant          identity.VariantSpec
	ForceFoundation  bool
	FoundationPath   string
	SkipAssetCheck   bool
	Sync             bool
	Notify           bool
	Copy             bool
	ManualsDirectory string
	ReleaseBaseURL   string
}

// Builder carries the collaborators of a run. Nil collaborators disable their step.
type Builder struct {
	Logger   *zap.Logger
	Uploader Uploader
	Notifier Notifier
	Copier   clipboard.Copier
	Chooser  BumpChooser
	Now      func() time.Time
}

// Artifact is one built archive.
type Artifact struct {
	Plugin      string
	Version     string
	ArchivePath string
	Size        int64
	RemotePath  string
	DownloadURL string
	Variant     bool
	Foundation  *foundation.Result
}

// Result reports what a run produced.
type Result struct {
	Plugin       composer.PluginInfo
	Version      string
	Bumped       bool
	Git          git.Info
	Artifacts    []Artifact
	Manuals      []string
	SyncSkipped  bool
	Notified     int
	Copied       bool
	VariantError error
}

// Run executes the workflow. A failed variant build does not discard the base
// archive: the base is still published and the variant error is returned with the
// result.
func (builder Builder) Run(ctx context.Context, options Options) (Result, error) {
	logger := builder.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sourceDirectory, absoluteError := filepath.Abs(options.SourceDirectory)
	if absoluteError != nil {
		return Result{}, fmt.Errorf("resolve source directory: %w", absoluteError)
	}
	outputDirectory, outputError := filepath.Abs(options.OutputDirectory)
	if outputError != nil {
		return Result{}, fmt.Errorf("resolve output directory: %w", outputError)
	}

	pluginInfo, infoError := composer.ReadPluginInfo(sourceDirectory)
	if infoError != nil {
		return Result{}, infoError
	}
	result := Result{Plugin: pluginInfo, Version: pluginInfo.Version}
	logger.Info("building plugin", zap.String("plugin", pluginInfo.Name), zap.String("version", pluginInfo.Version))

	if !options.SkipAssetCheck {
		if assetError := verifyAssets(sourceDirectory, logger); assetError != nil {
			return result, assetError
		}
	}
	warnUnignoredOutput(sourceDirectory, outputDirectory, logger)

	repository, openError := git.Open(sourceDirectory)
	if openError != nil {
		logger.Warn("git information unavailable", zap.Error(openError))
		result.Git = git.Info{Branch: unknownRevision, Commit: unknownRevision}
	} else if gitInfo, gitError := repository.Info(); gitError != nil {
		logger.Warn("git information unavailable", zap.Error(gitError))
		result.Git = git.Info{Branch: unknownRevision, Commit: unknownRevision}
	} else {
		result.Git = gitInfo
	}

	bump, bumpError := builder.resolveBump(options, pluginInfo.Version, logger)
	if bumpError != nil {
		return result, bumpError
	}
	if bump != version.BumpNone {
		if releaseError := builder.release(ctx, repository, sourceDirectory, bump, &result, logger); releaseError != nil {
			return result, releaseError
		}
	}

	if makeError := os.MkdirAll(outputDirectory, 0o755); makeError != nil {
		return result, fmt.Errorf("create output directory %s: %w", outputDirectory, makeError)
	}
	workDirectory, temporaryError := os.MkdirTemp("", temporaryDirectoryPattern)
	if temporaryError != nil {
		return result, fmt.Errorf("create temporary directory: %w", temporaryError)
	}
	defer os.RemoveAll(workDirectory)

	ruleSet, ruleError := exclusion.LoadRuleSet(sourceDirectory, logger)
	if ruleError != nil {
		return result, ruleError
	}
	excludeOutputDirectory(ruleSet, sourceDirectory, outputDirectory)

	injectFoundation, foundationError := needsFoundation(sourceDirectory, options)
	if foundationError != nil {
		return result, foundationError
	}

	packager := packager{
		sourceDirectory: sourceDirectory,
		outputDirectory: outputDirectory,
		ruleSet:         ruleSet,
		foundationPath:  options.FoundationPath,
		inject:          injectFoundation,
		git:             result.Git,
		created:         builder.now(),
		logger:          logger,
	}
	baseArtifact, baseError := packager.buildBase(filepath.Join(workDirectory, baseBuildDirectory), pluginInfo.Name, result.Version)
	if baseError != nil {
		return result, baseError
	}
	result.Artifacts = append(result.Artifacts, baseArtifact)

	if options.Variant.Enabled() {
		variantArtifact, variantError := packager.buildVariant(filepath.Join(workDirectory, variantBuildDirectory), pluginInfo.Name, result.Version, options.Variant)
		if variantError != nil {
			result.VariantError = fmt.Errorf(errorVariantFormat, options.Variant.NewName(pluginInfo.Name), variantError)
			logger.Error("variant build failed", zap.String("variant", options.Variant.NewName(pluginInfo.Name)), zap.Error(variantError))
		} else {
			result.Artifacts = append(result.Artifacts, variantArtifact)
		}
	}

	if publishError := builder.publish(ctx, sourceDirectory, options, &result, logger); publishError != nil {
		return result, publishError
	}
	builder.announce(ctx, options, &result, logger)
	builder.copyToClipboard(options, &result, logger)
	return result, result.VariantError
}

func (builder Builder) now() time.Time {
	if builder.Now != nil {
		return builder.Now()
	}
	return time.Now()
}

func verifyAssets(sourceDirectory string, logger *zap.Logger) error {
	outdated, verifyError := assets.VerifyCompiled(sourceDirectory, logger)
	if verifyError != nil {
		return verifyError
	}
	if len(outdated) == 0 {
		logger.Debug("compiled assets are up to date")
		return nil
	}
	descriptions := make([]string, 0, len(outdated))
	for _, entry := range outdated {
		descriptions = append(descriptions, entry.String())
	}
	return fmt.Errorf(errorOutdatedAssetsFormat, ErrOutdatedAssets, strings.Join(descriptions, "; "))
}

// resolveBump prefers the explicit option, then the chooser. Without either, or
// when no terminal is attached, no bump is applied.
func (builder Builder) resolveBump(options Options, current string, logger *zap.Logger) (version.Bump, error) {
	if options.Bump != "" {
		return options.Bump, nil
	}
	if builder.Chooser == nil {
		return version.BumpNone, nil
	}
	bump, chooseError := builder.Chooser(current)
	if chooseError != nil {
		logger.Debug("version prompt unavailable", zap.Error(chooseError))
		return version.BumpNone, nil
	}
	return bump, nil
}

// release bumps the composer.json version, commits and tags it, and pushes both.
// A failed push leaves the local commit and tag in place and is reported as a warning.
func (builder Builder) release(ctx context.Context, repository *git.Repository, sourceDirectory string, bump version.Bump, result *Result, logger *zap.Logger) error {
	if repository == nil {
		return ErrBumpWithoutRepository
	}
	if cleanError := repository.RequireClean(); cleanError != nil {
		return cleanError
	}
	nextVersion, nextError := version.Next(result.Version, bump)
	if nextError != nil {
		return nextError
	}
	if updateError := composer.UpdateVersion(sourceDirectory, nextVersion); updateError != nil {
		return updateError
	}
	commit, commitError := repository.CommitAndTag(composer.Path(sourceDirectory), nextVersion, fmt.Sprintf(bumpCommitMessageFormat, nextVersion))
	if commitError != nil {
		return commitError
	}
	logger.Info("version bumped", zap.String("from", result.Version), zap.String("to", nextVersion), zap.String("commit", commit))
	result.Version = nextVersion
	result.Bumped = true
	result.Git.Commit = commit
	if pushError := repository.Push(ctx, result.Git.Branch, nextVersion, logger); pushError != nil {
		logger.Warn("push failed; push the branch and tag manually", zap.Error(pushError))
	}
	return nil
}

func needsFoundation(sourceDirectory string, options Options) (bool, error) {
	required := options.ForceFoundation
	if !required {
		declared, dependencyError := composer.HasDependency(sourceDirectory, foundation.DefaultCompanion.PackageName)
		if dependencyError != nil {
			return false, dependencyError
		}
		required = declared
	}
	if required && strings.TrimSpace(options.FoundationPath) == "" {
		return false, ErrCompanionNotConfigured
	}
	return required, nil
}

// excludeOutputDirectory keeps earlier archives out of the package when the output
// directory lies inside the source tree.
func excludeOutputDirectory(ruleSet *exclusion.RuleSet, sourceDirectory string, outputDirectory string) {
	relative, relativeError := filepath.Rel(sourceDirectory, outputDirectory)
	if relativeError != nil || relative == "." || strings.HasPrefix(relative, "..") {
		return
	}
	ruleSet.Add(exclusion.Rule{Pattern: "/" + filepath.ToSlash(relative), Source: exclusion.SourceBuiltIn})
}

// warnUnignoredOutput warns when an output directory inside the tree is missing
// from the root ignore-file.
func warnUnignoredOutput(sourceDirectory string, outputDirectory string, logger *zap.Logger) {
	relative, relativeError := filepath.Rel(sourceDirectory, outputDirectory)
	if relativeError != nil || relative == "." || strings.HasPrefix(relative, "..") {
		return
	}
	ignoreContent, readError := os.ReadFile(filepath.Join(sourceDirectory, ".gitignore"))
	if readError != nil {
		return
	}
	relative = filepath.ToSlash(relative)
	for _, line := range strings.Split(string(ignoreContent), "\n") {
		if strings.Trim(strings.TrimSpace(line), "/") == relative {
			return
		}
	}
	logger.Warn("output directory is not ignored by git; add it to .gitignore", zap.String("directory", relative+"/"))
}
