package goap

// PlanningSystem is the action set and goal set considered together when
// pruning. It is a value: narrowing the actions returns a new system.
type PlanningSystem struct {
	Actions []Action
	Goals   []Goal
}

// NewPlanningSystem copies actions and goals into a new system.
func NewPlanningSystem(actions []Action, goals []Goal) PlanningSystem {
	return PlanningSystem{
		Actions: append([]Action(nil), actions...),
		Goals:   append([]Goal(nil), goals...),
	}
}

// WithActions returns a system with the same goals and the given actions.
func (ps PlanningSystem) WithActions(actions []Action) PlanningSystem {
	return NewPlanningSystem(actions, ps.Goals)
}

// Action looks an action up by name.
func (ps PlanningSystem) Action(name string) (Action, bool) {
	for _, a := range ps.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Goal looks a goal up by name.
func (ps PlanningSystem) Goal(name string) (Goal, bool) {
	for _, g := range ps.Goals {
		if g.Name == name {
			return g, true
		}
	}
	return Goal{}, false
}

// ActionNames returns the action names in system order.
func (ps PlanningSystem) ActionNames() []string {
	return ActionNames(ps.Actions)
}

// Conditions returns every condition referenced by an action or goal.
func (ps PlanningSystem) Conditions() []Condition {
	seen := make(map[Condition]struct{})
	for _, a := range ps.Actions {
		for _, c := range a.Conditions() {
			seen[c] = struct{}{}
		}
	}
	for _, g := range ps.Goals {
		for c := range g.Preconditions {
			seen[c] = struct{}{}
		}
	}
	return sortedKeys(seen)
}
