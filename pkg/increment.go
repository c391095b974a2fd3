package smartversion

import "fmt"

// Increment is the release decision for a change set.
type Increment int

// The zero value is None so that an unset decision never bumps anything.
const (
	None Increment = iota
	Patch
	Minor
	Major
)

func (i Increment) String() string {
	switch i {
	case None:
		return "none"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return fmt.Sprintf("Increment(%d)", int(i))
	}
}

// ParseIncrement is the inverse of Increment.String.
func ParseIncrement(s string) (Increment, error) {
	switch s {
	case "none":
		return None, nil
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	default:
		return None, fmt.Errorf("unknown increment %q", s)
	}
}
