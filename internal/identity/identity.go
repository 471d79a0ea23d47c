// Package identity derives every renamed form of a plugin identifier needed to build a variant.
// Nothing in this package touches the filesystem.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// NamespaceSeparator separates PHP namespace segments.
const NamespaceSeparator = `\`

// ErrEmptyPluginClass is returned when no plugin class is available to derive an identity from.
var ErrEmptyPluginClass = errors.New("plugin class is empty")

// Identity is a plugin's declared identity.
type Identity struct {
	// Name is the CamelCase base name, e.g. TopdataMachineTranslationsSW6.
	Name string
	// Namespace is the PHP namespace, e.g. Topdata\TopdataMachineTranslationsSW6.
	Namespace string
	// FQCN is the fully-qualified main class name. By convention the main class shares the plugin's name.
	FQCN string
}

// FromPluginClass splits a fully-qualified plugin class into its identity.
func FromPluginClass(fqcn string) (Identity, error) {
	trimmedClass := strings.Trim(strings.TrimSpace(fqcn), NamespaceSeparator)
	if trimmedClass == "" {
		return Identity{}, ErrEmptyPluginClass
	}
	separatorIndex := strings.LastIndex(trimmedClass, NamespaceSeparator)
	if separatorIndex < 0 {
		return Identity{Name: trimmedClass, FQCN: trimmedClass}, nil
	}
	return Identity{
		Name:      trimmedClass[separatorIndex+1:],
		Namespace: trimmedClass[:separatorIndex],
		FQCN:      trimmedClass,
	}, nil
}

// VariantSpec holds the optional fragments that rename a plugin into a variant.
type VariantSpec struct {
	Prefix string
	Suffix string
}

// Enabled reports whether a prefix or suffix is set.
func (spec VariantSpec) Enabled() bool {
	return spec.Prefix != "" || spec.Suffix != ""
}

// NewName concatenates prefix, original name and suffix without separators.
func (spec VariantSpec) NewName(originalName string) string {
	return spec.Prefix + originalName + spec.Suffix
}

// String renders the fragments for log output.
func (spec VariantSpec) String() string {
	return fmt.Sprintf("prefix=%q suffix=%q", spec.Prefix, spec.Suffix)
}

// Replacement is one literal old to new substitution.
type Replacement struct {
	Old string
	New string
}

// RewriteMap pairs every old form of an identity with its new form for one variant build.
// The metadata rewriter and the filesystem rewriter consume the same map.
type RewriteMap struct {
	OldName          string
	NewName          string
	OldNamespace     string
	NewNamespace     string
	OldFQCN          string
	NewFQCN          string
	OldComposerKebab string
	NewComposerKebab string
	OldAssetKebab    string
	NewAssetKebab    string
}

// Derive computes the rewrite map for original under spec. Namespace and FQCN are
// produced by substituting the name inside the existing strings so vendor segments
// survive untouched.
func Derive(original Identity, spec VariantSpec) RewriteMap {
	newName := spec.NewName(original.Name)
	return RewriteMap{
		OldName:          original.Name,
		NewName:          newName,
		OldNamespace:     original.Namespace,
		NewNamespace:     substitute(original.Namespace, original.Name, newName),
		OldFQCN:          original.FQCN,
		NewFQCN:          substitute(original.FQCN, original.Name, newName),
		OldComposerKebab: ComposerKebab(original.Name),
		NewComposerKebab: ComposerKebab(newName),
		OldAssetKebab:    AssetKebab(original.Name),
		NewAssetKebab:    AssetKebab(newName),
	}
}

// Identity returns the renamed identity described by the map.
func (rewriteMap RewriteMap) Identity() Identity {
	return Identity{Name: rewriteMap.NewName, Namespace: rewriteMap.NewNamespace, FQCN: rewriteMap.NewFQCN}
}

// TextReplacements lists the literal substitutions applied to file contents, in order:
// namespace, asset kebab form, then the bare name.
func (rewriteMap RewriteMap) TextReplacements() []Replacement {
	candidates := []Replacement{
		{Old: rewriteMap.OldNamespace, New: rewriteMap.NewNamespace},
		{Old: rewriteMap.OldAssetKebab, New: rewriteMap.NewAssetKebab},
		{Old: rewriteMap.OldName, New: rewriteMap.NewName},
	}
	replacements := make([]Replacement, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Old == "" || candidate.Old == candidate.New {
			continue
		}
		replacements = append(replacements, candidate)
	}
	return replacements
}

// Replacer builds a single-pass literal replacer over TextReplacements. Text that was
// already substituted is never scanned again, so the new namespace is not renamed twice
// by the bare-name substitution; when two forms start at the same position the earlier
// one in TextReplacements wins.
func (rewriteMap RewriteMap) Replacer() *strings.Replacer {
	replacements := rewriteMap.TextReplacements()
	pairs := make([]string, 0, 2*len(replacements))
	for _, replacement := range replacements {
		pairs = append(pairs, replacement.Old, replacement.New)
	}
	return strings.NewReplacer(pairs...)
}

// Apply performs the text replacements on content.
func (rewriteMap RewriteMap) Apply(content string) string {
	return rewriteMap.Replacer().Replace(content)
}

func substitute(value string, oldName string, newName string) string {
	if value == "" || oldName == "" {
		return value
	}
	return strings.ReplaceAll(value, oldName, newName)
}
