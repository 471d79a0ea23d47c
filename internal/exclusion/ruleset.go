package exclusion

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tyemirov/swrelease/internal/utils"
)

// Source identifies where a rule came from.
type Source int

const (
	// SourceBuiltIn marks the hardcoded patterns.
	SourceBuiltIn Source = iota
	// SourceBlacklist marks patterns from the project blacklist file.
	SourceBlacklist
	// SourceIgnoreFile marks patterns from a cascading ignore-file.
	SourceIgnoreFile
)

// String returns a readable name for the source.
func (source Source) String() string {
	switch source {
	case SourceBuiltIn:
		return "built-in"
	case SourceBlacklist:
		return "blacklist"
	case SourceIgnoreFile:
		return "ignore-file"
	default:
		return "unknown"
	}
}

// Rule is a single glob pattern scoped to a directory of the source tree.
// An empty Scope means the tree root.
type Rule struct {
	Pattern string
	Scope   string
	Source  Source
}

// RuleSet is the union of every active rule. A path is excluded when any rule matches it.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet constructs a rule set from the provided rules.
func NewRuleSet(rules ...Rule) *RuleSet {
	ruleSet := &RuleSet{}
	for _, rule := range rules {
		ruleSet.Add(rule)
	}
	return ruleSet
}

// Add appends a rule. Empty patterns are dropped.
func (ruleSet *RuleSet) Add(rule Rule) {
	rule.Pattern = utils.NormalizeSlashes(strings.TrimSpace(rule.Pattern))
	rule.Scope = strings.Trim(utils.NormalizeSlashes(rule.Scope), "/")
	if rule.Scope == "." {
		rule.Scope = ""
	}
	if rule.Pattern == "" || rule.Pattern == "/" {
		return
	}
	ruleSet.rules = append(ruleSet.rules, rule)
}

// Rules returns a copy of the active rules in the order they were added.
func (ruleSet *RuleSet) Rules() []Rule {
	return append([]Rule(nil), ruleSet.rules...)
}

// Len reports the number of active rules.
func (ruleSet *RuleSet) Len() int {
	return len(ruleSet.rules)
}

// IsExcluded reports whether relativePath, relative to the tree root, is excluded.
// A path below an excluded directory is excluded as well.
func (ruleSet *RuleSet) IsExcluded(relativePath string) bool {
	normalizedPath := strings.Trim(utils.NormalizeSlashes(relativePath), "/")
	normalizedPath = strings.TrimPrefix(normalizedPath, "./")
	if normalizedPath == "" || normalizedPath == "." {
		return false
	}
	for _, rule := range ruleSet.rules {
		if rule.matches(normalizedPath) {
			return true
		}
	}
	return false
}

// matches evaluates the rule against a normalized root-relative path.
func (rule Rule) matches(normalizedPath string) bool {
	localPath := normalizedPath
	if rule.Scope != "" {
		scopePrefix := rule.Scope + "/"
		if !strings.HasPrefix(normalizedPath, scopePrefix) {
			return false
		}
		localPath = strings.TrimPrefix(normalizedPath, scopePrefix)
	}

	pattern := strings.TrimSuffix(rule.Pattern, "/")
	pathSegments := strings.Split(localPath, "/")

	if !strings.Contains(pattern, "/") {
		for _, segment := range pathSegments {
			if globMatches(pattern, segment) {
				return true
			}
		}
		return false
	}

	anchoredPattern := strings.TrimPrefix(pattern, "/")
	for segmentCount := 1; segmentCount <= len(pathSegments); segmentCount++ {
		if globMatches(anchoredPattern, strings.Join(pathSegments[:segmentCount], "/")) {
			return true
		}
	}
	return false
}

// globMatches treats malformed patterns as non-matching.
func globMatches(pattern string, candidate string) bool {
	isMatched, matchError := doublestar.Match(pattern, candidate)
	return matchError == nil && isMatched
}

// ValidPattern reports whether pattern is syntactically valid.
func ValidPattern(pattern string) bool {
	return doublestar.ValidatePattern(strings.TrimPrefix(strings.TrimSuffix(pattern, "/"), "/"))
}
