package variant

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/identity"
	"github.com/tyemirov/swrelease/internal/utils"
)

// CompiledAssetDirectory holds the storefront build output, relative to the plugin root.
var CompiledAssetDirectory = filepath.Join("src", "Resources", "app", "storefront", "dist", "storefront", "js")

const compiledAssetExtension = ".js"

// Step identifies one stage of the filesystem rewrite.
type Step int

// Filesystem rewrite stages, in execution order.
const (
	StepMainSource Step = iota + 1
	StepCompiledAssets
	StepTextSubstitution
	StepRootRename
)

func (step Step) String() string {
	switch step {
	case StepMainSource:
		return "main source rename"
	case StepCompiledAssets:
		return "compiled asset rename"
	case StepTextSubstitution:
		return "text substitution"
	case StepRootRename:
		return "root directory rename"
	default:
		return fmt.Sprintf("step %d", int(step))
	}
}

// Outcome is the result of a completed step.
type Outcome int

// Step outcomes. Only the first two steps may be skipped.
const (
	OutcomeApplied Outcome = iota
	OutcomeSkipped
)

func (outcome Outcome) String() string {
	if outcome == OutcomeSkipped {
		return "skipped"
	}
	return "applied"
}

// StepReport records how one step ended.
type StepReport struct {
	Step    Step
	Outcome Outcome
	Reason  string
}

// Result describes a rewritten tree.
type Result struct {
	NewName       string
	RootPath      string
	ModifiedFiles int
	Steps         []StepReport
}

// StepError reports the step and path at which the rewrite stopped.
type StepError struct {
	Step Step
	Path string
	Err  error
}

func (stepError *StepError) Error() string {
	return fmt.Sprintf("%s failed at %s: %v", stepError.Step, stepError.Path, stepError.Err)
}

func (stepError *StepError) Unwrap() error {
	return stepError.Err
}

// ApplyVariant rewrites the isolated tree at rootPath in place so it carries the new
// identity of rewriteMap. The main source file and the compiled assets are renamed
// when they can be found unambiguously; otherwise the step is skipped with a warning.
// Text substitution and the root rename must succeed.
func ApplyVariant(rootPath string, originalName string, rewriteMap identity.RewriteMap, logger *zap.Logger) (Result, error) {
	fileRewriter := &treeRewriter{
		rootPath:     rootPath,
		originalName: originalName,
		rewriteMap:   rewriteMap,
		logger:       logger,
		result:       Result{NewName: rewriteMap.NewName, RootPath: rootPath},
	}
	steps := []struct {
		step Step
		run  func() (string, error)
	}{
		{step: StepMainSource, run: fileRewriter.renameMainSource},
		{step: StepCompiledAssets, run: fileRewriter.renameCompiledAssets},
		{step: StepTextSubstitution, run: fileRewriter.substituteText},
		{step: StepRootRename, run: fileRewriter.renameRoot},
	}
	for _, current := range steps {
		skipReason, stepError := current.run()
		if stepError != nil {
			return fileRewriter.result, stepError
		}
		report := StepReport{Step: current.step, Outcome: OutcomeApplied}
		if skipReason != "" {
			report.Outcome = OutcomeSkipped
			report.Reason = skipReason
			logger.Warn("variant step skipped", zap.Stringer("step", current.step), zap.String("reason", skipReason))
		}
		fileRewriter.result.Steps = append(fileRewriter.result.Steps, report)
	}
	return fileRewriter.result, nil
}

type treeRewriter struct {
	rootPath     string
	originalName string
	rewriteMap   identity.RewriteMap
	logger       *zap.Logger
	result       Result
}

// renameMainSource renames src/<originalName>.php. A missing file skips the step.
func (rewriter *treeRewriter) renameMainSource() (string, error) {
	sourceDirectory := filepath.Join(rewriter.rootPath, utils.SourceDirectoryName)
	oldPath := filepath.Join(sourceDirectory, rewriter.originalName+utils.PHPFileExtension)
	newPath := filepath.Join(sourceDirectory, rewriter.rewriteMap.NewName+utils.PHPFileExtension)
	if !utils.PathExists(oldPath) {
		return fmt.Sprintf("main source file %s not found", utils.RelativePathOrSelf(oldPath, rewriter.rootPath)), nil
	}
	if renameError := renameNoClobber(oldPath, newPath); renameError != nil {
		return "", &StepError{Step: StepMainSource, Path: oldPath, Err: renameError}
	}
	rewriter.logger.Debug("renamed main source file", zap.String("from", filepath.Base(oldPath)), zap.String("to", filepath.Base(newPath)))
	return "", nil
}

// renameCompiledAssets renames the single build-output directory below the compiled
// asset parent and its entry file. The directory name is discovered because older
// builds do not follow the current naming convention.
func (rewriter *treeRewriter) renameCompiledAssets() (string, error) {
	parentDirectory := filepath.Join(rewriter.rootPath, CompiledAssetDirectory)
	entries, readError := os.ReadDir(parentDirectory)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return fmt.Sprintf("compiled asset directory %s not found", CompiledAssetDirectory), nil
		}
		return "", &StepError{Step: StepCompiledAssets, Path: parentDirectory, Err: readError}
	}
	var subdirectories []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirectories = append(subdirectories, entry.Name())
		}
	}
	if len(subdirectories) != 1 {
		return fmt.Sprintf("expected exactly one directory in %s, found %d", CompiledAssetDirectory, len(subdirectories)), nil
	}

	oldDirectory := filepath.Join(parentDirectory, subdirectories[0])
	newDirectory := filepath.Join(parentDirectory, rewriter.rewriteMap.NewAssetKebab)
	if oldDirectory != newDirectory {
		if renameError := renameNoClobber(oldDirectory, newDirectory); renameError != nil {
			return "", &StepError{Step: StepCompiledAssets, Path: oldDirectory, Err: renameError}
		}
		rewriter.logger.Debug("renamed compiled asset directory", zap.String("from", subdirectories[0]), zap.String("to", rewriter.rewriteMap.NewAssetKebab))
	}

	oldEntry := filepath.Join(newDirectory, rewriter.rewriteMap.OldAssetKebab+compiledAssetExtension)
	newEntry := filepath.Join(newDirectory, rewriter.rewriteMap.NewAssetKebab+compiledAssetExtension)
	if !utils.PathExists(oldEntry) {
		return fmt.Sprintf("compiled entry file %s not found", filepath.Base(oldEntry)), nil
	}
	if renameError := renameNoClobber(oldEntry, newEntry); renameError != nil {
		return "", &StepError{Step: StepCompiledAssets, Path: oldEntry, Err: renameError}
	}
	return "", nil
}

// substituteText rewrites every text file of the tree. The root composer.json is left
// to RewriteMetadata: it already carries the new identity, which contains the old name.
func (rewriter *treeRewriter) substituteText() (string, error) {
	replacer := rewriter.rewriteMap.Replacer()
	metadataPath := filepath.Join(rewriter.rootPath, utils.ComposerFileName)
	walkError := filepath.WalkDir(rewriter.rootPath, func(currentPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return &StepError{Step: StepTextSubstitution, Path: currentPath, Err: walkError}
		}
		if !entry.Type().IsRegular() || currentPath == metadataPath {
			return nil
		}
		if !utils.AcceptRewritable(currentPath, rewriter.logger) {
			return nil
		}
		content, readError := os.ReadFile(currentPath)
		if readError != nil {
			return &StepError{Step: StepTextSubstitution, Path: currentPath, Err: readError}
		}
		rewritten := replacer.Replace(string(content))
		if rewritten == string(content) {
			return nil
		}
		fileInfo, infoError := entry.Info()
		if infoError != nil {
			return &StepError{Step: StepTextSubstitution, Path: currentPath, Err: infoError}
		}
		if writeError := os.WriteFile(currentPath, []byte(rewritten), fileInfo.Mode().Perm()); writeError != nil {
			return &StepError{Step: StepTextSubstitution, Path: currentPath, Err: writeError}
		}
		rewriter.result.ModifiedFiles++
		return nil
	})
	if walkError != nil {
		return "", walkError
	}
	rewriter.logger.Debug("substituted identifiers", zap.Int("files", rewriter.result.ModifiedFiles))
	return "", nil
}

// renameRoot renames the tree's own directory to the new plugin name.
func (rewriter *treeRewriter) renameRoot() (string, error) {
	newRootPath := filepath.Join(filepath.Dir(rewriter.rootPath), rewriter.rewriteMap.NewName)
	if newRootPath == rewriter.rootPath {
		return "", nil
	}
	if renameError := renameNoClobber(rewriter.rootPath, newRootPath); renameError != nil {
		return "", &StepError{Step: StepRootRename, Path: rewriter.rootPath, Err: renameError}
	}
	rewriter.result.RootPath = newRootPath
	return "", nil
}

// renameNoClobber refuses to replace an existing destination.
func renameNoClobber(oldPath string, newPath string) error {
	if utils.PathExists(newPath) {
		return fmt.Errorf("%s: %w", newPath, fs.ErrExist)
	}
	return os.Rename(oldPath, newPath)
}
