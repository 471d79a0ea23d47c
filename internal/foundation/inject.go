package foundation

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/composer"
	"github.com/tyemirov/swrelease/internal/identity"
	"github.com/tyemirov/swrelease/internal/utils"
)

// Inject embeds DefaultCompanion from companionRoot into the plugin tree at targetRoot.
func Inject(targetRoot string, companionRoot string, logger *zap.Logger) (Result, error) {
	return DefaultCompanion.Inject(targetRoot, companionRoot, logger)
}

// Inject copies the manifest directories of the companion at companionRoot into
// src/Foundation of targetRoot and moves them under the target's namespace. The
// target's namespace is read from its composer.json at call time, so a tree that
// was already renamed to a variant is handled like any other.
func (companion Companion) Inject(targetRoot string, companionRoot string, logger *zap.Logger) (Result, error) {
	if !utils.IsDirectory(companionRoot) {
		return Result{}, &Error{Stage: StageCopy, Path: companionRoot, Err: fs.ErrNotExist}
	}
	document, loadError := composer.Load(targetRoot)
	if loadError != nil {
		return Result{}, &Error{Stage: StageMetadata, Path: targetRoot, Err: loadError}
	}
	targetIdentity, identityError := document.Identity()
	if identityError != nil {
		return Result{}, &Error{Stage: StageMetadata, Path: composer.Path(targetRoot), Err: identityError}
	}

	result := Result{Namespace: targetIdentity.Namespace + identity.NamespaceSeparator + injectedNamespaceSegment}
	injectedRoot := filepath.Join(targetRoot, utils.SourceDirectoryName, InjectedDirectoryName)

	for _, manifestEntry := range companion.Manifest {
		sourceDirectory := filepath.Join(companionRoot, utils.SourceDirectoryName, filepath.FromSlash(manifestEntry))
		if !utils.IsDirectory(sourceDirectory) {
			logger.Debug("companion directory absent", zap.String("directory", manifestEntry))
			continue
		}
		copiedFiles, copyError := utils.CopyDirectory(sourceDirectory, filepath.Join(injectedRoot, filepath.FromSlash(manifestEntry)))
		if copyError != nil {
			return result, &Error{Stage: StageCopy, Path: sourceDirectory, Err: copyError}
		}
		result.CopiedDirectories = append(result.CopiedDirectories, manifestEntry)
		result.CopiedFiles += copiedFiles
	}

	rewrittenFiles, rewriteError := rewriteNamespace(injectedRoot, companion.Namespace, result.Namespace, func(path string) bool {
		return utils.AcceptRewritable(path, logger)
	})
	if rewriteError != nil {
		return result, rewriteError
	}
	result.RewrittenFiles = rewrittenFiles
	logger.Info("injected companion code",
		zap.String("namespace", result.Namespace),
		zap.Int("directories", len(result.CopiedDirectories)),
		zap.Int("files", result.CopiedFiles),
		zap.Int("rewritten", result.RewrittenFiles),
	)

	referenceFiles, referenceError := rewriteTargetReferences(targetRoot, injectedRoot, companion.Namespace, result.Namespace)
	if referenceError != nil {
		return result, referenceError
	}
	result.ReferenceFiles = referenceFiles

	servicesMerged, servicesError := mergeServices(
		filepath.Join(companionRoot, ServicesFile),
		filepath.Join(targetRoot, ServicesFile),
		companion.Namespace,
		result.Namespace,
		logger,
	)
	if servicesError != nil {
		return result, servicesError
	}
	result.ServicesMerged = servicesMerged

	result.RequirementRemoved = document.RemoveRequirement(companion.PackageName)
	if setError := document.SetAutoloadPath(result.Namespace+identity.NamespaceSeparator, injectedAutoloadPath); setError != nil {
		return result, &Error{Stage: StageMetadata, Path: composer.Path(targetRoot), Err: setError}
	}
	if saveError := composer.Save(targetRoot, document); saveError != nil {
		return result, &Error{Stage: StageMetadata, Path: composer.Path(targetRoot), Err: saveError}
	}
	if result.RequirementRemoved {
		logger.Debug("removed companion requirement", zap.String("package", companion.PackageName))
	}
	return result, nil
}

// rewriteTargetReferences updates the target's own PHP sources and container
// definitions that refer to companion classes.
func rewriteTargetReferences(targetRoot string, injectedRoot string, oldNamespace string, newNamespace string) (int, error) {
	return rewriteNamespace(targetRoot, oldNamespace, newNamespace, func(path string) bool {
		extension := filepath.Ext(path)
		if extension != utils.PHPFileExtension && extension != xmlFileExtension {
			return false
		}
		return !strings.HasPrefix(path, injectedRoot+string(filepath.Separator))
	})
}

// rewriteNamespace replaces oldNamespace with newNamespace in the accepted files below
// root and counts the files that changed.
func rewriteNamespace(root string, oldNamespace string, newNamespace string, accept func(string) bool) (int, error) {
	if !utils.IsDirectory(root) {
		return 0, nil
	}
	modifiedFiles := 0
	walkError := filepath.WalkDir(root, func(currentPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !entry.Type().IsRegular() || !accept(currentPath) {
			return nil
		}
		content, readError := os.ReadFile(currentPath)
		if readError != nil {
			return readError
		}
		rewritten := strings.ReplaceAll(string(content), oldNamespace, newNamespace)
		if rewritten == string(content) {
			return nil
		}
		fileInfo, infoError := entry.Info()
		if infoError != nil {
			return infoError
		}
		if writeError := os.WriteFile(currentPath, []byte(rewritten), fileInfo.Mode().Perm()); writeError != nil {
			return writeError
		}
		modifiedFiles++
		return nil
	})
	if walkError != nil {
		return modifiedFiles, &Error{Stage: StageRewrite, Path: root, Err: fmt.Errorf("rewriting %s: %w", oldNamespace, walkError)}
	}
	return modifiedFiles, nil
}
