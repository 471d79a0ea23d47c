package identity

import (
	"regexp"
	"strings"
)

var (
	composerWordBoundary  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerToUpperBoundary  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymToWordBoundary = regexp.MustCompile(`([A-Z])([A-Z][a-z])`)
	upperPairBoundary     = regexp.MustCompile(`([A-Z])([A-Z])`)
)

const hyphenatedPair = "${1}-${2}"

// ComposerKebab converts a CamelCase name into the package-manager name form.
// Acronyms stay together: TopdataCategoryFilterSW6 becomes topdata-category-filter-sw6.
func ComposerKebab(camelCaseName string) string {
	hyphenated := composerWordBoundary.ReplaceAllString(camelCaseName, hyphenatedPair)
	hyphenated = lowerToUpperBoundary.ReplaceAllString(hyphenated, hyphenatedPair)
	return strings.ToLower(hyphenated)
}

// AssetKebab converts a CamelCase name the way the storefront build toolchain slugs
// compiled asset names: every pair of adjacent capitals is split, so
// TopdataCategoryFilterSW6 becomes topdata-category-filter-s-w6. A digit following a
// letter stays attached to it.
func AssetKebab(camelCaseName string) string {
	hyphenated := lowerToUpperBoundary.ReplaceAllString(camelCaseName, hyphenatedPair)
	hyphenated = acronymToWordBoundary.ReplaceAllString(hyphenated, hyphenatedPair)
	for {
		split := upperPairBoundary.ReplaceAllString(hyphenated, hyphenatedPair)
		if split == hyphenated {
			break
		}
		hyphenated = split
	}
	return strings.ToLower(hyphenated)
}
