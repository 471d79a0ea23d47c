// Package exclusion decides which paths of a plugin source tree are left out of a release archive.
package exclusion

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tyemirov/swrelease/internal/utils"
)

const (
	commentPrefix  = "#"
	negationPrefix = "!"
)

// builtInPatterns are always active. They cover version control, front-end dependency
// and build output directories, IDE and OS artifacts, tests and assistant tooling files.
// Bundled composer libraries in vendor/ ship with the plugin.
var builtInPatterns = []string{
	".git*",
	"builds",
	"__pycache__",
	"*.pyc",
	"node_modules",
	"tests",
	".idea",
	".vscode",
	".DS_Store",
	"Thumbs.db",
	"php-cs-fixer.*",
	".php-cs-fixer.*",
	"phpstan.*",
	"rector.*",
	"bitbucket-pipelines.yml",
	".sw-zip-blacklist",
	".aider*",
	"ai_docs",
	".roo*",
	".cursor*",
	".windsurf*",
	"CONVENTIONS.md",
	"CONVENTIONS-*.md",
	"CLAUDE.md",
	"repomix-output.txt",
}

// BuiltInPatterns returns a copy of the patterns that are always active.
func BuiltInPatterns() []string {
	return append([]string(nil), builtInPatterns...)
}

// LoadPatternFile reads one pattern per line from patternFilePath. Blank lines and
// lines starting with '#' are skipped. A missing file yields no patterns and no error.
// Repeated patterns are kept once. Negated patterns are returned separately so callers can report them; they never
// un-exclude anything.
//
// #nosec G304
func LoadPatternFile(patternFilePath string) ([]string, []string, error) {
	fileHandle, openFileError := os.Open(patternFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("open %s: %w", patternFilePath, openFileError)
	}
	defer fileHandle.Close()

	var patterns []string
	var negatedPatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		if strings.HasPrefix(trimmedLine, negationPrefix) {
			negatedPatterns = append(negatedPatterns, trimmedLine)
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, nil, fmt.Errorf("read %s: %w", patternFilePath, scanError)
	}
	return utils.DeduplicatePatterns(patterns), negatedPatterns, nil
}
