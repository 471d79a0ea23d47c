package exclusion

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/utils"
)

const (
	errorLoadBlacklistFormat  = "loading %s: %w"
	errorLoadIgnoreFileFormat = "loading ignore-file %s: %w"
	errorWalkTreeFormat       = "discovering ignore-files below %s: %w"
)

// LoadRuleSet assembles the rule set for the source tree rooted at rootDirectory:
// the built-in patterns, the project blacklist file and every ignore-file found in
// the tree, each scoped to its own directory. Missing files contribute nothing.
func LoadRuleSet(rootDirectory string, logger *zap.Logger) (*RuleSet, error) {
	ruleSet := NewRuleSet()
	for _, pattern := range builtInPatterns {
		ruleSet.Add(Rule{Pattern: pattern, Source: SourceBuiltIn})
	}

	blacklistPath := filepath.Join(rootDirectory, utils.BlacklistFileName)
	blacklistPatterns, negatedBlacklistPatterns, blacklistError := LoadPatternFile(blacklistPath)
	if blacklistError != nil {
		return nil, fmt.Errorf(errorLoadBlacklistFormat, utils.BlacklistFileName, blacklistError)
	}
	for _, pattern := range blacklistPatterns {
		addValidated(ruleSet, Rule{Pattern: pattern, Source: SourceBlacklist}, blacklistPath, logger)
	}
	reportNegations(negatedBlacklistPatterns, blacklistPath, logger)
	if len(blacklistPatterns) > 0 {
		logger.Debug("loaded blacklist patterns", zap.String("file", blacklistPath), zap.Int("count", len(blacklistPatterns)))
	}

	if discoveryError := discoverIgnoreFiles(rootDirectory, ruleSet, logger); discoveryError != nil {
		return nil, discoveryError
	}
	return ruleSet, nil
}

// discoverIgnoreFiles walks the whole tree before anything is copied. Directories
// that are already excluded are not descended into: rules found below them could
// only exclude paths that are excluded anyway.
func discoverIgnoreFiles(rootDirectory string, ruleSet *RuleSet, logger *zap.Logger) error {
	walkFunction := func(currentPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !directoryEntry.IsDir() {
			return nil
		}
		relativeDirectory := utils.RelativePathOrSelf(currentPath, rootDirectory)
		if relativeDirectory != "." && ruleSet.IsExcluded(relativeDirectory) {
			return filepath.SkipDir
		}

		ignoreFilePath := filepath.Join(currentPath, utils.GitIgnoreFileName)
		patterns, negatedPatterns, loadError := LoadPatternFile(ignoreFilePath)
		if loadError != nil {
			return fmt.Errorf(errorLoadIgnoreFileFormat, ignoreFilePath, loadError)
		}
		scope := relativeDirectory
		if scope == "." {
			scope = ""
		}
		for _, pattern := range patterns {
			addValidated(ruleSet, Rule{Pattern: pattern, Scope: scope, Source: SourceIgnoreFile}, ignoreFilePath, logger)
		}
		reportNegations(negatedPatterns, ignoreFilePath, logger)
		if len(patterns) > 0 {
			logger.Debug("loaded ignore-file patterns", zap.String("file", ignoreFilePath), zap.Int("count", len(patterns)))
		}
		return nil
	}

	if walkError := filepath.WalkDir(rootDirectory, walkFunction); walkError != nil {
		return fmt.Errorf(errorWalkTreeFormat, rootDirectory, walkError)
	}
	return nil
}

func addValidated(ruleSet *RuleSet, rule Rule, originPath string, logger *zap.Logger) {
	if !ValidPattern(rule.Pattern) {
		logger.Warn("skipping malformed exclusion pattern", zap.String("file", originPath), zap.String("pattern", rule.Pattern))
		return
	}
	ruleSet.Add(rule)
}

func reportNegations(negatedPatterns []string, originPath string, logger *zap.Logger) {
	for _, negatedPattern := range negatedPatterns {
		logger.Debug("negated patterns are not supported, ignoring", zap.String("file", originPath), zap.String("pattern", negatedPattern))
	}
}
