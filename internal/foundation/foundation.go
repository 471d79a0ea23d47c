// Package foundation embeds the shared companion plugin into a dependent plugin so the
// package no longer needs it installed separately.
package foundation

import (
	"fmt"
	"path/filepath"
)

// Companion describes the shared plugin whose code can be embedded.
type Companion struct {
	// PackageName is the dependency declared in the target's composer.json.
	PackageName string
	// Namespace is the companion's own base namespace.
	Namespace string
	// Manifest lists the source subdirectories that form the reusable surface.
	// Migrations and other per-installation code are deliberately absent.
	Manifest []string
}

// DefaultCompanion is the Topdata foundation plugin.
var DefaultCompanion = Companion{
	PackageName: "topdata/topdata-foundation-sw6",
	Namespace:   `Topdata\TopdataFoundationSW6`,
	Manifest: []string{
		"Command",
		"Constants",
		"Core/Content/TopdataReport",
		"DataStructure",
		"DTO",
		"Exception",
		"Helper",
		"Service",
		"Twig",
		"Util",
	},
}

// Injected code lives below this directory and namespace segment of the target.
const (
	InjectedDirectoryName    = "Foundation"
	injectedNamespaceSegment = "Foundation"
	injectedAutoloadPath     = "src/Foundation/"
)

// ServicesFile is the dependency-injection container definition, relative to a plugin root.
var ServicesFile = filepath.Join("src", "Resources", "config", "services.xml")

// Stage names the part of an injection that failed.
type Stage string

// Injection stages.
const (
	StageMetadata Stage = "metadata"
	StageCopy     Stage = "copy"
	StageRewrite  Stage = "namespace rewrite"
	StageServices Stage = "services"
)

// Error reports the stage and path at which an injection stopped.
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (injectionError *Error) Error() string {
	return fmt.Sprintf("foundation %s failed at %s: %v", injectionError.Stage, injectionError.Path, injectionError.Err)
}

func (injectionError *Error) Unwrap() error {
	return injectionError.Err
}

// Result summarizes one injection. RewrittenFiles counts injected files whose
// namespace changed; ReferenceFiles counts the target's own PHP files that
// referenced the companion.
type Result struct {
	Namespace          string
	CopiedDirectories  []string
	CopiedFiles        int
	RewrittenFiles     int
	ReferenceFiles     int
	ServicesMerged     int
	RequirementRemoved bool
}
