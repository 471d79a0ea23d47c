package variant

import (
	"strings"

	"github.com/tyemirov/swrelease/internal/composer"
	"github.com/tyemirov/swrelease/internal/identity"
)

const packageNameSeparator = "/"

// RewriteMetadata moves document onto the identity described by rewriteMap. The
// package name, the marker-stamped texts, the declared plugin class and the PSR-4
// prefixes of autoload and autoload-dev change; every other member keeps its value and position.
func RewriteMetadata(document *composer.Document, rewriteMap identity.RewriteMap, spec identity.VariantSpec) {
	if document.Name != "" {
		document.Name = variantPackageName(document.Name, rewriteMap.NewComposerKebab)
	}

	stamp := func(text string) string { return identity.StampMarkers(text, spec) }
	document.Description = stampText(document.Description, stamp)

	if document.Extra != nil {
		document.Extra.Label = stampText(document.Extra.Label, stamp)
		document.Extra.Description = stampText(document.Extra.Description, stamp)
		if document.Extra.PluginClass != "" {
			document.Extra.PluginClass = rewriteMap.NewFQCN
		}
	}

	oldPrefix := rewriteMap.OldNamespace + identity.NamespaceSeparator
	newPrefix := rewriteMap.NewNamespace + identity.NamespaceSeparator
	document.Autoload.RenamePrefixes(oldPrefix, newPrefix)
	document.AutoloadDev.RenamePrefixes(oldPrefix, newPrefix)
}

// variantPackageName keeps the vendor segment, lower-cased, and swaps the project segment.
func variantPackageName(packageName string, projectSegment string) string {
	vendor, _, hasVendor := strings.Cut(packageName, packageNameSeparator)
	if !hasVendor {
		return projectSegment
	}
	return strings.ToLower(vendor) + packageNameSeparator + projectSegment
}

func stampText(text *composer.Text, stamp func(string) string) *composer.Text {
	if text == nil {
		return nil
	}
	stamped := text.Map(stamp)
	return &stamped
}
