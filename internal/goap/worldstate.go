package goap

import (
	"sort"
	"strings"
)

// WorldState is an immutable snapshot of condition determinations.
// Every transformation returns a new value; a condition that is not present
// reads as Unknown.
type WorldState struct {
	values map[Condition]Determination
}

// NewWorldState copies values into a new world state.
func NewWorldState(values map[Condition]Determination) WorldState {
	m := make(map[Condition]Determination, len(values))
	for c, d := range values {
		m[c] = d
	}
	return WorldState{values: m}
}

// Get returns the determination for c, Unknown when absent.
func (s WorldState) Get(c Condition) Determination {
	return s.values[c]
}

// Has reports whether c is present in the snapshot, whatever its value.
func (s WorldState) Has(c Condition) bool {
	_, ok := s.values[c]
	return ok
}

// Len returns the number of conditions present.
func (s WorldState) Len() int {
	return len(s.values)
}

// Conditions returns the present conditions in sorted order.
func (s WorldState) Conditions() []Condition {
	out := make([]Condition, 0, len(s.values))
	for c := range s.values {
		out = append(out, c)
	}
	sortConditions(out)
	return out
}

// Values returns a copy of the underlying mapping.
func (s WorldState) Values() map[Condition]Determination {
	out := make(map[Condition]Determination, len(s.values))
	for c, d := range s.values {
		out[c] = d
	}
	return out
}

// UnknownConditions returns the conditions currently mapped to Unknown,
// sorted by name.
func (s WorldState) UnknownConditions() []Condition {
	var out []Condition
	for c, d := range s.values {
		if d == Unknown {
			out = append(out, c)
		}
	}
	sortConditions(out)
	return out
}

// Variants returns two states equal to s except that c is forced to TRUE in
// the first and FALSE in the second.
func (s WorldState) Variants(c Condition) [2]WorldState {
	return [2]WorldState{s.With(c, True), s.With(c, False)}
}

// With returns a new state with the determination of c replaced.
func (s WorldState) With(c Condition, d Determination) WorldState {
	m := make(map[Condition]Determination, len(s.values)+1)
	for k, v := range s.values {
		m[k] = v
	}
	m[c] = d
	return WorldState{values: m}
}

// Satisfies reports whether every required determination matches exactly.
// Unknown in the state never matches a TRUE or FALSE requirement.
func (s WorldState) Satisfies(required map[Condition]Determination) bool {
	for c, want := range required {
		if s.values[c] != want {
			return false
		}
	}
	return true
}

// Unsatisfied counts the requirements that do not match.
func (s WorldState) Unsatisfied(required map[Condition]Determination) int {
	n := 0
	for c, want := range required {
		if s.values[c] != want {
			n++
		}
	}
	return n
}

// Apply returns the state that results from applying effects.
func (s WorldState) Apply(effects map[Condition]Determination) WorldState {
	m := make(map[Condition]Determination, len(s.values)+len(effects))
	for k, v := range s.values {
		m[k] = v
	}
	for k, v := range effects {
		m[k] = v
	}
	return WorldState{values: m}
}

// Equal reports whether both states hold the same determinations.
// An absent condition and an explicit Unknown are not the same.
func (s WorldState) Equal(other WorldState) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for c, d := range s.values {
		od, ok := other.values[c]
		if !ok || od != d {
			return false
		}
	}
	return true
}

// Key returns a canonical encoding of the state, usable as a map key.
func (s WorldState) Key() string {
	var b strings.Builder
	for i, c := range s.Conditions() {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(string(c))
		b.WriteByte('=')
		switch s.values[c] {
		case True:
			b.WriteByte('T')
		case False:
			b.WriteByte('F')
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// String returns a sorted, human readable rendering.
func (s WorldState) String() string {
	if len(s.values) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(s.values))
	for _, c := range s.Conditions() {
		parts = append(parts, string(c)+": "+s.values[c].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortConditions(cs []Condition) {
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
}
