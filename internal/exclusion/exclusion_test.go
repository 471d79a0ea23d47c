package exclusion_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/swrelease/internal/exclusion"
	"github.com/tyemirov/swrelease/internal/utils"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if makeDirectoryError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirectoryError != nil {
		testingHandle.Fatalf("failed to create directory for %s: %v", filePath, makeDirectoryError)
	}
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// TestRuleSetMatching verifies basename and anchored matching semantics.
func TestRuleSetMatching(testingHandle *testing.T) {
	ruleSet := exclusion.NewRuleSet(
		exclusion.Rule{Pattern: "*.log", Source: exclusion.SourceBlacklist},
		exclusion.Rule{Pattern: "docs/internal", Source: exclusion.SourceBlacklist},
		exclusion.Rule{Pattern: "cache/", Scope: "src/Resources", Source: exclusion.SourceIgnoreFile},
		exclusion.Rule{Pattern: "/local.json", Scope: "config", Source: exclusion.SourceIgnoreFile},
	)

	testCases := []struct {
		testName     string
		relativePath string
		expected     bool
	}{
		{testName: "basename pattern at root", relativePath: "debug.log", expected: true},
		{testName: "basename pattern nested", relativePath: "src/var/debug.log", expected: true},
		{testName: "anchored pattern matches directory", relativePath: "docs/internal", expected: true},
		{testName: "anchored pattern matches descendant", relativePath: "docs/internal/notes.md", expected: true},
		{testName: "anchored pattern does not float", relativePath: "src/docs/internal", expected: false},
		{testName: "scoped directory pattern inside scope", relativePath: "src/Resources/cache/a.js", expected: true},
		{testName: "scoped directory pattern deeper inside scope", relativePath: "src/Resources/app/cache", expected: true},
		{testName: "scoped pattern outside scope", relativePath: "cache/a.js", expected: false},
		{testName: "leading slash anchors to scope", relativePath: "config/local.json", expected: true},
		{testName: "leading slash does not float", relativePath: "config/nested/local.json", expected: false},
		{testName: "windows separators are normalized", relativePath: `src\var\debug.log`, expected: true},
		{testName: "root is never excluded", relativePath: ".", expected: false},
		{testName: "unrelated file", relativePath: "src/Plugin.php", expected: false},
	}
	for index, testCase := range testCases {
		actual := ruleSet.IsExcluded(testCase.relativePath)
		if actual != testCase.expected {
			testingHandle.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestBuiltInPatterns verifies that development artifacts are always excluded.
func TestBuiltInPatterns(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	ruleSet, loadError := exclusion.LoadRuleSet(rootDirectory, zap.NewNop())
	if loadError != nil {
		testingHandle.Fatalf("LoadRuleSet failed: %v", loadError)
	}
	for _, excludedPath := range []string{".git/HEAD", ".gitignore", "node_modules/x/index.js", "tests/Unit/FooTest.php", "src/Resources/app/.DS_Store", "CLAUDE.md", "phpstan.neon", "builds/Plugin-v1.0.0.zip"} {
		if !ruleSet.IsExcluded(excludedPath) {
			testingHandle.Errorf("expected %s to be excluded", excludedPath)
		}
	}
	for _, keptPath := range []string{"composer.json", "src/Plugin.php", "README.md", "CHANGELOG.md", "vendor/autoload.php", "vendor/acme/lib/src/Client.php"} {
		if ruleSet.IsExcluded(keptPath) {
			testingHandle.Errorf("expected %s to be kept", keptPath)
		}
	}
}

// TestLoadRuleSetSources verifies blacklist and cascading ignore-file loading.
func TestLoadRuleSetSources(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, utils.BlacklistFileName), "# comment\n\nmanual-drafts\n*.psd\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, utils.GitIgnoreFileName), "/coverage\n!keep.me\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "src", "Resources", "app", utils.GitIgnoreFileName), "dist-dev/\n")

	ruleSet, loadError := exclusion.LoadRuleSet(rootDirectory, zap.NewNop())
	if loadError != nil {
		testingHandle.Fatalf("LoadRuleSet failed: %v", loadError)
	}

	testCases := []struct {
		relativePath string
		expected     bool
	}{
		{relativePath: "manual-drafts/en.md", expected: true},
		{relativePath: "src/Resources/design.psd", expected: true},
		{relativePath: "coverage/index.html", expected: true},
		{relativePath: "src/coverage/index.html", expected: false},
		{relativePath: "src/Resources/app/dist-dev/main.js", expected: true},
		{relativePath: "dist-dev/main.js", expected: false},
		{relativePath: "keep.me", expected: false},
	}
	for _, testCase := range testCases {
		actual := ruleSet.IsExcluded(testCase.relativePath)
		if actual != testCase.expected {
			testingHandle.Errorf("%s: expected %t, got %t", testCase.relativePath, testCase.expected, actual)
		}
	}

	sourceCounts := map[exclusion.Source]int{}
	for _, rule := range ruleSet.Rules() {
		sourceCounts[rule.Source]++
	}
	if sourceCounts[exclusion.SourceBlacklist] != 2 {
		testingHandle.Errorf("expected 2 blacklist rules, got %d", sourceCounts[exclusion.SourceBlacklist])
	}
	if sourceCounts[exclusion.SourceIgnoreFile] != 2 {
		testingHandle.Errorf("expected 2 ignore-file rules, got %d", sourceCounts[exclusion.SourceIgnoreFile])
	}
}

// TestLoadPatternFileMissing verifies that absent files contribute zero patterns.
func TestLoadPatternFileMissing(testingHandle *testing.T) {
	patterns, negatedPatterns, loadError := exclusion.LoadPatternFile(filepath.Join(testingHandle.TempDir(), "absent"))
	if loadError != nil {
		testingHandle.Fatalf("expected no error, got %v", loadError)
	}
	if len(patterns) != 0 || len(negatedPatterns) != 0 {
		testingHandle.Fatalf("expected no patterns, got %v and %v", patterns, negatedPatterns)
	}
}

// TestIgnoreFilesBelowExcludedDirectoriesAreSkipped verifies that pruned directories do not contribute rules.
func TestIgnoreFilesBelowExcludedDirectoriesAreSkipped(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "node_modules", "pkg", utils.GitIgnoreFileName), "*.php\n")

	ruleSet, loadError := exclusion.LoadRuleSet(rootDirectory, zap.NewNop())
	if loadError != nil {
		testingHandle.Fatalf("LoadRuleSet failed: %v", loadError)
	}
	for _, rule := range ruleSet.Rules() {
		if rule.Source == exclusion.SourceIgnoreFile {
			testingHandle.Fatalf("unexpected ignore-file rule %+v", rule)
		}
	}
}

// TestMalformedPatternIsReported verifies that malformed patterns are skipped with a warning.
func TestMalformedPatternIsReported(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, utils.BlacklistFileName), "[unterminated\nvalid.txt\n")

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	ruleSet, loadError := exclusion.LoadRuleSet(rootDirectory, zap.New(observedCore))
	if loadError != nil {
		testingHandle.Fatalf("LoadRuleSet failed: %v", loadError)
	}
	if !ruleSet.IsExcluded("valid.txt") {
		testingHandle.Errorf("expected valid pattern to be active")
	}
	warnings := observedLogs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("skipping malformed exclusion pattern")
	if warnings.Len() != 1 {
		testingHandle.Fatalf("expected one warning, got %d", warnings.Len())
	}
}

// TestUnionMonotonicity verifies that adding rules never un-excludes a path.
func TestUnionMonotonicity(testingHandle *testing.T) {
	candidatePaths := []string{"a.txt", "src/a.txt", "src/b/c.php", "docs/x.md", "node_modules/y.js", "vendor/z"}
	additions := []exclusion.Rule{
		{Pattern: "*.md", Source: exclusion.SourceBlacklist},
		{Pattern: "b/", Scope: "src", Source: exclusion.SourceIgnoreFile},
		{Pattern: "[", Source: exclusion.SourceBlacklist},
		{Pattern: "a.txt", Scope: "elsewhere", Source: exclusion.SourceIgnoreFile},
		{Pattern: "src/**", Source: exclusion.SourceBuiltIn},
	}

	ruleSet := exclusion.NewRuleSet(exclusion.Rule{Pattern: "node_modules", Source: exclusion.SourceBuiltIn})
	previouslyExcluded := map[string]bool{}
	for _, candidatePath := range candidatePaths {
		previouslyExcluded[candidatePath] = ruleSet.IsExcluded(candidatePath)
	}
	for _, addition := range additions {
		ruleSet.Add(addition)
		for _, candidatePath := range candidatePaths {
			excluded := ruleSet.IsExcluded(candidatePath)
			if previouslyExcluded[candidatePath] && !excluded {
				testingHandle.Fatalf("adding %+v un-excluded %s", addition, candidatePath)
			}
			previouslyExcluded[candidatePath] = excluded
		}
	}
}
