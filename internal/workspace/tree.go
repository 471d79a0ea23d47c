package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	branchConnector     = "├── "
	lastBranchConnector = "└── "
	branchIndent        = "│   "
	lastBranchIndent    = "    "
	directorySuffix     = "/"

	// UnlimitedDepth makes RenderTree descend without limit.
	UnlimitedDepth = -1

	warningUnreadableFormat = "%s[unreadable: %v]"
)

// RenderTree draws the directory below root as an ASCII tree, directories first and
// each group sorted case-insensitively. Directories deeper than maxDepth are listed
// but not expanded; UnlimitedDepth expands everything.
func RenderTree(root string, maxDepth int) (string, error) {
	information, statError := os.Stat(root)
	if statError != nil {
		return "", fmt.Errorf("stat %s: %w", root, statError)
	}
	if !information.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}
	lines := []string{filepath.Base(filepath.Clean(root)) + directorySuffix}
	lines = appendTreeLines(lines, root, "", 0, maxDepth)
	return strings.Join(lines, "\n"), nil
}

func appendTreeLines(lines []string, directoryPath string, prefix string, depth int, maxDepth int) []string {
	entries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		return append(lines, fmt.Sprintf(warningUnreadableFormat, prefix, readError))
	}
	sort.SliceStable(entries, func(left int, right int) bool {
		if entries[left].IsDir() != entries[right].IsDir() {
			return entries[left].IsDir()
		}
		return strings.ToLower(entries[left].Name()) < strings.ToLower(entries[right].Name())
	})
	for index, entry := range entries {
		connector, indent := branchConnector, branchIndent
		if index == len(entries)-1 {
			connector, indent = lastBranchConnector, lastBranchIndent
		}
		name := entry.Name()
		if entry.IsDir() {
			name += directorySuffix
		}
		lines = append(lines, prefix+connector+name)
		if entry.IsDir() && (maxDepth == UnlimitedDepth || depth < maxDepth) {
			lines = appendTreeLines(lines, filepath.Join(directoryPath, entry.Name()), prefix+indent, depth+1, maxDepth)
		}
	}
	return lines
}
