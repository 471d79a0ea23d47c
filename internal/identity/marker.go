package identity

import (
	"regexp"
	"strings"
)

// leadingMarkerBlock matches one or more bracketed markers at the start of a label. A
// marker holds at least one upper-case letter and no lower-case ones, so "[PRO-2]"
// is a marker while "[2024]" and "[beta]" are content.
var leadingMarkerBlock = regexp.MustCompile(`^(\[[^\[\]\p{Ll}]*\p{Lu}[^\[\]\p{Ll}]*\]\s*)+`)

// MarkerBlock renders the bracketed markers for spec, prefix first, each followed by a space.
func MarkerBlock(spec VariantSpec) string {
	var builder strings.Builder
	for _, fragment := range []string{spec.Prefix, spec.Suffix} {
		if fragment == "" {
			continue
		}
		builder.WriteString("[")
		builder.WriteString(strings.ToUpper(fragment))
		builder.WriteString("] ")
	}
	return builder.String()
}

// StripMarkers removes an existing marker block from the start of text.
func StripMarkers(text string) string {
	return leadingMarkerBlock.ReplaceAllString(text, "")
}

// StampMarkers replaces any existing marker block of text with the one for spec.
// Stamping an already stamped text again yields the same text.
func StampMarkers(text string, spec VariantSpec) string {
	markerBlock := MarkerBlock(spec)
	return markerBlock + StripMarkers(strings.TrimPrefix(text, markerBlock))
}
