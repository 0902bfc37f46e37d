package goap

import "sort"

// Action is a named capability. It is applicable when every precondition
// matches the state; applying it overwrites the state with its effects.
type Action struct {
	Name          string
	Preconditions map[Condition]Determination
	Effects       map[Condition]Determination
	Cost          float64
	Value         float64
}

// ApplicableTo reports whether all preconditions hold in s.
func (a Action) ApplicableTo(s WorldState) bool {
	return s.Satisfies(a.Preconditions)
}

// Produces reports whether the action sets c to d.
func (a Action) Produces(c Condition, d Determination) bool {
	got, ok := a.Effects[c]
	return ok && got == d
}

// Conditions returns every condition referenced as precondition or effect.
func (a Action) Conditions() []Condition {
	seen := make(map[Condition]struct{}, len(a.Preconditions)+len(a.Effects))
	for c := range a.Preconditions {
		seen[c] = struct{}{}
	}
	for c := range a.Effects {
		seen[c] = struct{}{}
	}
	return sortedKeys(seen)
}

// Goal is a named set of required determinations.
type Goal struct {
	Name          string
	Preconditions map[Condition]Determination
	Value         float64
}

// SatisfiedBy reports whether s meets every goal precondition.
func (g Goal) SatisfiedBy(s WorldState) bool {
	return s.Satisfies(g.Preconditions)
}

// Conditions returns the goal's precondition keys in sorted order.
func (g Goal) Conditions() []Condition {
	seen := make(map[Condition]struct{}, len(g.Preconditions))
	for c := range g.Preconditions {
		seen[c] = struct{}{}
	}
	return sortedKeys(seen)
}

// SortActions orders actions by name in place and returns the slice.
func SortActions(actions []Action) []Action {
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Name < actions[j].Name })
	return actions
}

// ActionNames returns the names of actions in their given order.
func ActionNames(actions []Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Name)
	}
	return out
}

func sortedKeys(set map[Condition]struct{}) []Condition {
	out := make([]Condition, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sortConditions(out)
	return out
}
