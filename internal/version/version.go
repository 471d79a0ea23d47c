// Package version computes release versions.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion indicates the version is not MAJOR.MINOR.PATCH.
var ErrInvalidVersion = errors.New("invalid version")

// Bump selects which component of a version is incremented.
type Bump string

// Supported bumps.
const (
	BumpNone  Bump = "none"
	BumpPatch Bump = "patch"
	BumpMinor Bump = "minor"
	BumpMajor Bump = "major"
)

const canonicalPrefix = "v"

// Bumps lists the bumps in the order they are offered to the user.
var Bumps = []Bump{BumpNone, BumpPatch, BumpMinor, BumpMajor}

// Label is the human-readable name of a bump.
func (bump Bump) Label() string {
	switch bump {
	case BumpPatch:
		return "Patch"
	case BumpMinor:
		return "Minor"
	case BumpMajor:
		return "Major"
	default:
		return "No version update"
	}
}

// ParseBump accepts none, patch, minor or major in any case.
func ParseBump(value string) (Bump, error) {
	candidate := Bump(strings.ToLower(strings.TrimSpace(value)))
	for _, bump := range Bumps {
		if bump == candidate {
			return bump, nil
		}
	}
	return "", fmt.Errorf("unknown version increment %q (expected none, patch, minor or major)", value)
}

// Version is a release version without build metadata.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse reads MAJOR.MINOR.PATCH with an optional leading v.
func Parse(value string) (Version, error) {
	canonical := canonicalPrefix + strings.TrimPrefix(strings.TrimSpace(value), canonicalPrefix)
	if !semver.IsValid(canonical) || semver.Prerelease(canonical) != "" || semver.Build(canonical) != "" {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, value)
	}
	components := strings.Split(strings.TrimPrefix(canonical, canonicalPrefix), ".")
	if len(components) != 3 {
		return Version{}, fmt.Errorf("%w: %q is not MAJOR.MINOR.PATCH", ErrInvalidVersion, value)
	}
	numbers := make([]int, len(components))
	for index, component := range components {
		number, conversionError := strconv.Atoi(component)
		if conversionError != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, value)
		}
		numbers[index] = number
	}
	return Version{Major: numbers[0], Minor: numbers[1], Patch: numbers[2]}, nil
}

func (version Version) String() string {
	return fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)
}

// Apply returns the version after bump.
func (version Version) Apply(bump Bump) Version {
	switch bump {
	case BumpMajor:
		return Version{Major: version.Major + 1}
	case BumpMinor:
		return Version{Major: version.Major, Minor: version.Minor + 1}
	case BumpPatch:
		return Version{Major: version.Major, Minor: version.Minor, Patch: version.Patch + 1}
	default:
		return version
	}
}

// Next bumps a version string. BumpNone returns current unchanged, even when it is
// not a valid version.
func Next(current string, bump Bump) (string, error) {
	if bump == BumpNone {
		return current, nil
	}
	parsed, parseError := Parse(current)
	if parseError != nil {
		return "", parseError
	}
	return parsed.Apply(bump).String(), nil
}

// Major returns the major component of value.
func Major(value string) (int, error) {
	parsed, parseError := Parse(value)
	if parseError != nil {
		return 0, parseError
	}
	return parsed.Major, nil
}

// Choice pairs a bump with the version it would produce.
type Choice struct {
	Bump    Bump
	Version string
}

// Title renders the choice for a prompt, e.g. "Minor - 1.3.0".
func (choice Choice) Title() string {
	return choice.Bump.Label() + " - " + choice.Version
}

// Choices lists every bump with its resulting version.
func Choices(current string) ([]Choice, error) {
	choices := make([]Choice, 0, len(Bumps))
	for _, bump := range Bumps {
		nextVersion, nextError := Next(current, bump)
		if nextError != nil {
			return nil, nextError
		}
		choices = append(choices, Choice{Bump: bump, Version: strings.TrimPrefix(nextVersion, canonicalPrefix)})
	}
	return choices, nil
}

// Compare orders two versions like semver.Compare; invalid versions sort first.
func Compare(left string, right string) int {
	return semver.Compare(canonicalPrefix+strings.TrimPrefix(left, canonicalPrefix), canonicalPrefix+strings.TrimPrefix(right, canonicalPrefix))
}
