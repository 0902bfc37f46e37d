package goap

import "strings"

// Plan is an ordered sequence of actions that achieves Goal.
type Plan struct {
	Actions []Action
	Goal    Goal
}

// ActionNames returns the ordered action names.
func (p Plan) ActionNames() []string {
	return ActionNames(p.Actions)
}

// SameShape reports whether both plans have identical ordered action names.
// No other attribute takes part in the comparison.
func (p Plan) SameShape(other Plan) bool {
	if len(p.Actions) != len(other.Actions) {
		return false
	}
	for i := range p.Actions {
		if p.Actions[i].Name != other.Actions[i].Name {
			return false
		}
	}
	return true
}

// Shape returns a key that is equal for plans of the same shape.
func (p Plan) Shape() string {
	return strings.Join(p.ActionNames(), "\x00")
}

// Contains reports whether an action with the given name is part of the plan.
func (p Plan) Contains(name string) bool {
	for _, a := range p.Actions {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Cost is the sum of action costs.
func (p Plan) Cost() float64 {
	var total float64
	for _, a := range p.Actions {
		total += a.Cost
	}
	return total
}

// NetValue is the goal value plus action values minus the plan cost.
func (p Plan) NetValue() float64 {
	total := p.Goal.Value
	for _, a := range p.Actions {
		total += a.Value
	}
	return total - p.Cost()
}

// Empty reports whether the goal is already satisfied without any action.
func (p Plan) Empty() bool {
	return len(p.Actions) == 0
}

// String renders the plan as "goal: a -> b -> c".
func (p Plan) String() string {
	if p.Empty() {
		return p.Goal.Name + ": (already satisfied)"
	}
	return p.Goal.Name + ": " + strings.Join(p.ActionNames(), " -> ")
}
