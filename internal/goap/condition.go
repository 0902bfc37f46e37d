// Package goap defines the value types shared by the planner: conditions,
// world states, actions, goals, plans and planning systems.
package goap

import (
	"fmt"
	"strings"
)

// Condition names a boolean fact about the world, e.g. "doorOpen".
type Condition string

// Determination is what is currently known about a condition.
// The zero value is Unknown.
type Determination int

const (
	Unknown Determination = iota
	True
	False
)

// String returns TRUE, FALSE or UNKNOWN.
func (d Determination) String() string {
	switch d {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Known reports whether d is TRUE or FALSE.
func (d Determination) Known() bool {
	return d == True || d == False
}

// Negate flips TRUE and FALSE. Unknown stays Unknown.
func (d Determination) Negate() Determination {
	switch d {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// FromBool converts a concrete boolean to a determination.
func FromBool(v bool) Determination {
	if v {
		return True
	}
	return False
}

// ParseDetermination parses TRUE/FALSE/UNKNOWN (case-insensitive). The
// shorthands yes/no, on/off, 1/0 and t/f are accepted too.
func ParseDetermination(s string) (Determination, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "on", "1":
		return True, nil
	case "false", "f", "no", "n", "off", "0":
		return False, nil
	case "unknown", "?":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("invalid determination %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Determination) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Determination) UnmarshalText(text []byte) error {
	parsed, err := ParseDetermination(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
