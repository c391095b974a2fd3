package smartversion

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrInvalidVersionFormat is returned when a string is not exactly three
// dot-separated non-negative integers.
var ErrInvalidVersionFormat = errors.New("invalid version format")

// ErrLeadingZero is returned for numeric X.Y.Z strings whose components are
// zero-padded, such as "2.05.0". It wraps ErrInvalidVersionFormat.
var ErrLeadingZero = fmt.Errorf("%w: leading zeros", ErrInvalidVersionFormat)

// ErrNoVersions is returned by Max when it is given nothing to compare.
var ErrNoVersions = errors.New("no versions to compare")

// Components may not carry leading zeros, otherwise "01.2.3" would not
// survive a round trip through String.
var (
	versionPattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)$`)
	paddedPattern  = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// SemanticVersion is a major.minor.patch triple. The zero value is 0.0.0.
type SemanticVersion struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in the strict "X.Y.Z" form. A "v" prefix,
// prerelease or build metadata, and surrounding whitespace are all rejected.
func Parse(s string) (SemanticVersion, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil && paddedPattern.MatchString(s) {
		return SemanticVersion{}, fmt.Errorf("%w: %q", ErrLeadingZero, s)
	}
	if m == nil {
		return SemanticVersion{}, fmt.Errorf("%w: %q (expected X.Y.Z)", ErrInvalidVersionFormat, s)
	}

	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			// Only reachable on overflow.
			return SemanticVersion{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersionFormat, s, err)
		}
		// Every component must still be incrementable by Apply.
		if n == math.MaxInt {
			return SemanticVersion{}, fmt.Errorf("%w: %q: component out of range", ErrInvalidVersionFormat, s)
		}
		parts[i] = n
	}
	return SemanticVersion{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// ParseOrZero parses s and falls back to 0.0.0 when s is not a valid version.
// Collaborators use it for base versions read from tags or project files.
func ParseOrZero(s string) SemanticVersion {
	v, err := Parse(s)
	if err != nil {
		return SemanticVersion{}
	}
	return v
}

// String returns the canonical "X.Y.Z" form.
func (v SemanticVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to,
// or after b.
func Compare(a, b SemanticVersion) int {
	switch {
	case a.Major != b.Major:
		return cmpInt(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpInt(a.Minor, b.Minor)
	default:
		return cmpInt(a.Patch, b.Patch)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Less reports whether v sorts before other.
func (v SemanticVersion) Less(other SemanticVersion) bool {
	return Compare(v, other) < 0
}

// Max returns the greatest version. When several versions tie, the first one
// wins.
func Max(versions ...SemanticVersion) (SemanticVersion, error) {
	if len(versions) == 0 {
		return SemanticVersion{}, ErrNoVersions
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if Compare(v, best) > 0 {
			best = v
		}
	}
	return best, nil
}

// Apply bumps base according to the increment. Lower components are reset to
// zero; None returns base unchanged.
func Apply(base SemanticVersion, inc Increment) SemanticVersion {
	switch inc {
	case Major:
		return SemanticVersion{Major: base.Major + 1}
	case Minor:
		return SemanticVersion{Major: base.Major, Minor: base.Minor + 1}
	case Patch:
		return SemanticVersion{Major: base.Major, Minor: base.Minor, Patch: base.Patch + 1}
	default:
		return base
	}
}
