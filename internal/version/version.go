// Package version parses, orders, and path-plans Kubernetes versions under
// the project's minor-version skew rules.
package version

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// Version is a Kubernetes release identified by (major, minor, patch).
type Version struct {
	Major, Minor, Patch uint64
}

// Parse reads a version string of the form "[v]M.m[.p]". A missing patch
// component defaults to 0. Inputs with fewer than two dotted components, or
// non-integer parts, are rejected.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if strings.Count(trimmed, ".") < 1 {
		return Version{}, fmt.Errorf("invalid version format: %q", s)
	}

	sv, err := semver.ParseTolerant(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version format: %q: %w", s, err)
	}
	return Version{Major: sv.Major, Minor: sv.Minor, Patch: sv.Patch}, nil
}

// String renders the version as "M.m.p".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmp(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmp(v.Minor, other.Minor)
	default:
		return cmp(v.Patch, other.Patch)
	}
}

func cmp(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// LT reports whether v is strictly less than other.
func (v Version) LT(other Version) bool { return v.Compare(other) < 0 }

// GE reports whether v is greater than or equal to other.
func (v Version) GE(other Version) bool { return v.Compare(other) >= 0 }

// Validate enforces the supported Kubernetes version window: major must be 1,
// minor must fall in [20, 31].
func Validate(v Version) (bool, string) {
	if v.Major != 1 {
		return false, fmt.Sprintf("only Kubernetes 1.x versions are supported (got %d.x)", v.Major)
	}
	if v.Minor < 20 {
		return false, fmt.Sprintf("Kubernetes %s is too old (minimum supported: 1.20)", v)
	}
	if v.Minor > 31 {
		return false, fmt.Sprintf("Kubernetes %s is not yet released or supported", v)
	}
	return true, fmt.Sprintf("version %s is valid", v)
}

// Path computes the ordered list of versions to traverse from current to
// target under the no-minor-skip rule. An empty result means current is
// already at or beyond target. Intermediate minors use a .0 placeholder —
// the agent resolves the concrete patch available on the node.
func Path(current, target Version) []Version {
	if current.GE(target) {
		return nil
	}
	if current.Minor == target.Minor {
		return []Version{target}
	}
	if target.Minor == current.Minor+1 {
		return []Version{target}
	}

	path := make([]Version, 0, target.Minor-current.Minor)
	for minor := current.Minor + 1; minor < target.Minor; minor++ {
		path = append(path, Version{Major: current.Major, Minor: minor, Patch: 0})
	}
	path = append(path, target)
	return path
}

// IsPatchUpgrade reports whether current and target differ only in patch.
func IsPatchUpgrade(current, target Version) bool {
	return current.Major == target.Major && current.Minor == target.Minor
}

// FormatPathMessage renders a human-readable summary of an upgrade path.
func FormatPathMessage(current, target Version, path []Version) string {
	switch {
	case len(path) == 0:
		return "no upgrade needed"
	case len(path) == 1 && IsPatchUpgrade(current, target):
		return fmt.Sprintf("Patch upgrade: %s → %s", current, target)
	case len(path) == 1:
		return fmt.Sprintf("Minor version upgrade: %s → %s", current, target)
	default:
		return fmt.Sprintf("Multi-step upgrade required: %d versions. Path: %s", len(path), formatSteps(path))
	}
}

func formatSteps(path []Version) string {
	out := ""
	for i, v := range path {
		if i > 0 {
			out += " → "
		}
		out += v.String()
	}
	return out
}

// Warnings emits advisories about an upgrade from current to target.
func Warnings(current, target Version) []string {
	var warnings []string
	if current.GE(target) {
		return append(warnings, fmt.Sprintf("target version %s is not newer than current %s", target, current))
	}

	if target.Major != current.Major {
		warnings = append(warnings, fmt.Sprintf("major version change detected: %d → %d", current.Major, target.Major))
	}

	minorDiff := int(target.Minor) - int(current.Minor)
	if minorDiff > 3 {
		warnings = append(warnings, fmt.Sprintf(
			"large version jump: %d minor versions. This will require %d sequential upgrades.", minorDiff, minorDiff))
	}

	if current.Minor <= 21 && target.Minor >= 22 {
		warnings = append(warnings,
			"upgrading from 1.21 or earlier to 1.22+: several APIs have been removed "+
				"(beta versions of common resources). Ensure all manifests use stable API versions.")
	}
	if current.Minor <= 24 && target.Minor >= 25 {
		warnings = append(warnings,
			"upgrading to 1.25+: PodSecurityPolicy has been removed. Migrate to Pod Security Standards before upgrading.")
	}
	if current.Minor <= 25 && target.Minor >= 26 {
		warnings = append(warnings,
			"upgrading to 1.26+: several beta APIs have been removed. Review the release notes for breaking changes.")
	}

	return warnings
}
