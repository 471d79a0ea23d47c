// Package composer reads and writes a plugin's package-metadata document (composer.json).
// Known fields are typed; everything else passes through untouched and in order.
package composer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/swrelease/internal/identity"
)

// Document member names.
const (
	NameKey        = "name"
	VersionKey     = "version"
	DescriptionKey = "description"
	RequireKey     = "require"
	AutoloadKey    = "autoload"
	AutoloadDevKey = "autoload-dev"
	ExtraKey       = "extra"
	PSR4Key        = "psr-4"
	LabelKey       = "label"
	PluginClassKey = "shopware-plugin-class"
)

// ErrPluginClassMissing is returned when extra.shopware-plugin-class is absent or empty.
var ErrPluginClassMissing = errors.New("composer document declares no " + ExtraKey + "." + PluginClassKey)

// Document is a typed view over composer.json.
type Document struct {
	Name        string
	Version     string
	Description *Text
	// Require maps package names to version constraints.
	Require     *Fields
	Autoload    *Autoload
	AutoloadDev *Autoload
	Extra       *Extra

	members Fields
}

// Autoload is an autoload or autoload-dev section; PSR4 maps namespace prefixes to paths.
type Autoload struct {
	PSR4 *Fields

	members Fields
}

// Extra is the extra section holding plugin-specific declarations.
type Extra struct {
	PluginClass string
	Label       *Text
	Description *Text

	members Fields
}

// UnmarshalJSON decodes the document, keeping unknown members.
// Members whose shape is unexpected stay untyped and pass through unchanged.
func (document *Document) UnmarshalJSON(data []byte) error {
	var members Fields
	if decodeError := json.Unmarshal(data, &members); decodeError != nil {
		return decodeError
	}
	*document = Document{members: members}
	document.Name, _ = members.GetString(NameKey)
	document.Version, _ = members.GetString(VersionKey)
	document.Description = decodeOptional[Text](&members, DescriptionKey)
	document.Require = decodeOptional[Fields](&members, RequireKey)
	document.Autoload = decodeOptional[Autoload](&members, AutoloadKey)
	document.AutoloadDev = decodeOptional[Autoload](&members, AutoloadDevKey)
	document.Extra = decodeOptional[Extra](&members, ExtraKey)
	return nil
}

// MarshalJSON writes typed fields back into their original positions.
func (document Document) MarshalJSON() ([]byte, error) {
	members := document.members.clone()
	if setError := setChangedString(&members, NameKey, document.Name); setError != nil {
		return nil, setError
	}
	if setError := setChangedString(&members, VersionKey, document.Version); setError != nil {
		return nil, setError
	}
	if setError := setOptional(&members, DescriptionKey, document.Description); setError != nil {
		return nil, setError
	}
	if setError := setOptional(&members, RequireKey, document.Require); setError != nil {
		return nil, setError
	}
	if setError := setOptional(&members, AutoloadKey, document.Autoload); setError != nil {
		return nil, setError
	}
	if setError := setOptional(&members, AutoloadDevKey, document.AutoloadDev); setError != nil {
		return nil, setError
	}
	if setError := setOptional(&members, ExtraKey, document.Extra); setError != nil {
		return nil, setError
	}
	return members.MarshalJSON()
}

// UnmarshalJSON decodes the autoload section.
func (autoload *Autoload) UnmarshalJSON(data []byte) error {
	var members Fields
	if decodeError := json.Unmarshal(data, &members); decodeError != nil {
		return decodeError
	}
	*autoload = Autoload{members: members}
	autoload.PSR4 = decodeOptional[Fields](&members, PSR4Key)
	return nil
}

// MarshalJSON writes the autoload section.
func (autoload Autoload) MarshalJSON() ([]byte, error) {
	members := autoload.members.clone()
	if setError := setOptional(&members, PSR4Key, autoload.PSR4); setError != nil {
		return nil, setError
	}
	return members.MarshalJSON()
}

// UnmarshalJSON decodes the extra section.
func (extra *Extra) UnmarshalJSON(data []byte) error {
	var members Fields
	if decodeError := json.Unmarshal(data, &members); decodeError != nil {
		return decodeError
	}
	*extra = Extra{members: members}
	extra.PluginClass, _ = members.GetString(PluginClassKey)
	extra.Label = decodeOptional[Text](&members, LabelKey)
	extra.Description = decodeOptional[Text](&members, DescriptionKey)
	return nil
}

// MarshalJSON writes the extra section.
func (extra Extra) MarshalJSON() ([]byte, error) {
	members := extra.members.clone()
	if setError := setChangedString(&members, PluginClassKey, extra.PluginClass); setError != nil {
		return nil, setError
	}
	if setError := setOptional(&members, LabelKey, extra.Label); setError != nil {
		return nil, setError
	}
	if setError := setOptional(&members, DescriptionKey, extra.Description); setError != nil {
		return nil, setError
	}
	return members.MarshalJSON()
}

// PluginClass returns the declared main plugin class, if any.
func (document *Document) PluginClass() string {
	if document.Extra == nil {
		return ""
	}
	return document.Extra.PluginClass
}

// Identity derives the plugin identity from the declared main class.
func (document *Document) Identity() (identity.Identity, error) {
	pluginClass := document.PluginClass()
	if pluginClass == "" {
		return identity.Identity{}, ErrPluginClassMissing
	}
	pluginIdentity, identityError := identity.FromPluginClass(pluginClass)
	if identityError != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrPluginClassMissing, identityError)
	}
	return pluginIdentity, nil
}

// HasRequirement reports whether packageName is a declared dependency.
func (document *Document) HasRequirement(packageName string) bool {
	return document.Require != nil && document.Require.Has(packageName)
}

// RemoveRequirement drops packageName from the dependency list. Removing an absent
// package is a no-op; the result reports whether anything changed.
func (document *Document) RemoveRequirement(packageName string) bool {
	if document.Require == nil {
		return false
	}
	return document.Require.Delete(packageName)
}

// SetAutoloadPath maps a PSR-4 namespace prefix to path, creating the sections on demand.
func (document *Document) SetAutoloadPath(namespacePrefix string, path string) error {
	if document.Autoload == nil {
		document.Autoload = &Autoload{}
	}
	if document.Autoload.PSR4 == nil {
		document.Autoload.PSR4 = &Fields{}
	}
	return document.Autoload.PSR4.SetValue(namespacePrefix, path)
}

// AutoloadPrefixes lists the PSR-4 namespace prefixes in declaration order.
func (document *Document) AutoloadPrefixes() []string {
	if document.Autoload == nil || document.Autoload.PSR4 == nil {
		return nil
	}
	return document.Autoload.PSR4.Keys()
}

// RenamePrefixes moves every PSR-4 prefix starting with oldNamespace below
// newNamespace, keeping positions, and reports how many changed.
func (autoload *Autoload) RenamePrefixes(oldNamespace string, newNamespace string) int {
	if autoload == nil || autoload.PSR4 == nil {
		return 0
	}
	renamed := 0
	for _, prefix := range autoload.PSR4.Keys() {
		if !strings.HasPrefix(prefix, oldNamespace) {
			continue
		}
		if autoload.PSR4.Rename(prefix, newNamespace+strings.TrimPrefix(prefix, oldNamespace)) {
			renamed++
		}
	}
	return renamed
}

// RenameAutoloadPrefix re-keys a PSR-4 mapping without moving it.
func (document *Document) RenameAutoloadPrefix(oldPrefix string, newPrefix string) bool {
	if document.Autoload == nil || document.Autoload.PSR4 == nil {
		return false
	}
	return document.Autoload.PSR4.Rename(oldPrefix, newPrefix)
}

// decodeOptional decodes the member stored under key. Absent, null and unexpectedly
// shaped members yield nil and remain untyped.
func decodeOptional[T any](members *Fields, key string) *T {
	rawValue, present := members.Get(key)
	if !present || string(bytes.TrimSpace(rawValue)) == "null" {
		return nil
	}
	target := new(T)
	if decodeError := json.Unmarshal(rawValue, target); decodeError != nil {
		return nil
	}
	return target
}

// setOptional writes a typed member back. A nil value leaves the raw member alone.
func setOptional[T any](members *Fields, key string, value *T) error {
	if value == nil {
		return nil
	}
	return members.SetValue(key, *value)
}

// setChangedString writes value only when it differs from the stored string, so an
// untouched member keeps its original encoding. An empty value never replaces a
// member that was not a string.
func setChangedString(members *Fields, key string, value string) error {
	storedValue, isString := members.GetString(key)
	if isString && storedValue == value {
		return nil
	}
	if !isString && value == "" {
		return nil
	}
	return members.SetValue(key, value)
}

func (fields Fields) clone() Fields {
	cloned := Fields{}
	for _, key := range fields.keys {
		cloned.Set(key, fields.values[key])
	}
	return cloned
}
