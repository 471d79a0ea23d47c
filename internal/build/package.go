package build

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/archive"
	"github.com/tyemirov/swrelease/internal/exclusion"
	"github.com/tyemirov/swrelease/internal/foundation"
	"github.com/tyemirov/swrelease/internal/git"
	"github.com/tyemirov/swrelease/internal/identity"
	"github.com/tyemirov/swrelease/internal/release"
	"github.com/tyemirov/swrelease/internal/utils"
	"github.com/tyemirov/swrelease/internal/variant"
	"github.com/tyemirov/swrelease/internal/workspace"
)

// packager turns isolated copies of the source tree into archives. Every build
// gets its own copy below its own work directory.
type packager struct {
	sourceDirectory string
	outputDirectory string
	ruleSet         *exclusion.RuleSet
	foundationPath  string
	inject          bool
	git             git.Info
	created         time.Time
	logger          *zap.Logger
}

func (packager packager) isolate(workDirectory string, pluginName string) (string, error) {
	pluginDirectory := filepath.Join(workDirectory, pluginName)
	copied, copyError := workspace.CopyTree(packager.sourceDirectory, pluginDirectory, packager.ruleSet, packager.logger)
	if copyError != nil {
		return "", fmt.Errorf("copy plugin files: %w", copyError)
	}
	packager.logger.Debug("isolated plugin copy", zap.String("path", pluginDirectory), zap.Int("files", copied.Files))
	return pluginDirectory, nil
}

func (packager packager) buildBase(workDirectory string, pluginName string, pluginVersion string) (Artifact, error) {
	pluginDirectory, isolateError := packager.isolate(workDirectory, pluginName)
	if isolateError != nil {
		return Artifact{}, isolateError
	}
	return packager.finish(pluginDirectory, pluginName, pluginVersion, false)
}

func (packager packager) buildVariant(workDirectory string, pluginName string, pluginVersion string, spec identity.VariantSpec) (Artifact, error) {
	pluginDirectory, isolateError := packager.isolate(workDirectory, pluginName)
	if isolateError != nil {
		return Artifact{}, isolateError
	}
	transformed, _, transformError := variant.Transform(pluginDirectory, spec, packager.logger)
	if transformError != nil {
		return Artifact{}, transformError
	}
	return packager.finish(transformed.RootPath, transformed.NewName, pluginVersion, true)
}

// finish injects the companion when required, writes the release summary and packs
// the tree.
func (packager packager) finish(pluginDirectory string, pluginName string, pluginVersion string, isVariant bool) (Artifact, error) {
	artifact := Artifact{Plugin: pluginName, Version: pluginVersion, Variant: isVariant}
	if packager.inject {
		injected, injectError := foundation.Inject(pluginDirectory, packager.foundationPath, packager.logger)
		if injectError != nil {
			return artifact, injectError
		}
		artifact.Foundation = &injected
	}

	info := release.Info{
		Plugin:  pluginName,
		Version: pluginVersion,
		Created: packager.created,
		Branch:  packager.git.Branch,
		Commit:  packager.git.Commit,
	}
	if _, writeError := info.WriteFile(pluginDirectory); writeError != nil {
		return artifact, writeError
	}
	packager.logger.Debug("release summary\n" + info.Render(release.StyleGrid))

	if tree, treeError := workspace.RenderTree(pluginDirectory, workspace.UnlimitedDepth); treeError == nil {
		packager.logger.Debug("package contents\n" + tree)
	}

	archivePath, archiveError := archive.CreateZip(pluginDirectory, filepath.Join(packager.outputDirectory, archive.FileName(pluginName, pluginVersion)))
	if archiveError != nil {
		return artifact, archiveError
	}
	artifact.ArchivePath = archivePath
	if archiveInfo, statError := os.Stat(archivePath); statError == nil {
		artifact.Size = archiveInfo.Size()
	}
	packager.logger.Info("created archive", zap.String("plugin", pluginName), zap.String("archive", archivePath), zap.String("size", utils.FormatFileSize(artifact.Size)))
	return artifact, nil
}
