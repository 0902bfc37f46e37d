package planner

import "github.com/metalagman/goap/internal/goap"

// FindActionsRelevantToGoals returns, sorted by name, the union over all
// goals of the actions found by backward chaining plus the rerouting actions
// kept around them.
func FindActionsRelevantToGoals(ps goap.PlanningSystem) []goap.Action {
	consumed := consumedConditions(ps)
	union := make(map[string]goap.Action)
	for _, goal := range ps.Goals {
		for _, a := range findActionsRelevantToSingleGoal(ps.Actions, goal, consumed) {
			union[a.Name] = a
		}
	}
	out := make([]goap.Action, 0, len(union))
	for _, a := range union {
		out = append(out, a)
	}
	return goap.SortActions(out)
}

// findActionsRelevantToSingleGoal chains backwards from the goal's
// preconditions through actions that set a condition TRUE until a fixed
// point, then adds rerouting actions. Producers of FALSE are not chained,
// so a FALSE precondition is only reachable through the rerouting step.
func findActionsRelevantToSingleGoal(actions []goap.Action, goal goap.Goal, consumed map[goap.Condition]struct{}) []goap.Action {
	relevant := make(map[string]goap.Action)
	processed := make(map[goap.Condition]struct{})
	worklist := goal.Conditions()

	for len(worklist) > 0 {
		c := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if _, done := processed[c]; done {
			continue
		}
		processed[c] = struct{}{}

		for _, a := range actions {
			if !a.Produces(c, goap.True) {
				continue
			}
			relevant[a.Name] = a
			for pre := range a.Preconditions {
				if _, done := processed[pre]; !done {
					worklist = append(worklist, pre)
				}
			}
		}
	}

	for _, a := range reroutingActions(actions, relevant, consumed) {
		relevant[a.Name] = a
	}

	out := make([]goap.Action, 0, len(relevant))
	for _, a := range relevant {
		out = append(out, a)
	}
	return out
}

// reroutingActions over-approximates relevance so alternate routes survive
// until multi-path pruning. An action outside the relevant set is kept when
// its effects or preconditions touch a condition the relevant actions
// reference, or when it is the only producer of an effect value that some
// precondition in the system consumes.
func reroutingActions(actions []goap.Action, relevant map[string]goap.Action, consumed map[goap.Condition]struct{}) []goap.Action {
	referenced := make(map[goap.Condition]struct{})
	for _, a := range relevant {
		for _, c := range a.Conditions() {
			referenced[c] = struct{}{}
		}
	}

	var out []goap.Action
	for _, a := range actions {
		if _, ok := relevant[a.Name]; ok {
			continue
		}
		if touchesAny(a.Effects, referenced) ||
			touchesAny(a.Preconditions, referenced) ||
			uniquelyProducesConsumed(a, relevant, consumed) {
			out = append(out, a)
		}
	}
	return out
}

func touchesAny(m map[goap.Condition]goap.Determination, set map[goap.Condition]struct{}) bool {
	for c := range m {
		if _, ok := set[c]; ok {
			return true
		}
	}
	return false
}

func uniquelyProducesConsumed(a goap.Action, relevant map[string]goap.Action, consumed map[goap.Condition]struct{}) bool {
	for c, d := range a.Effects {
		if _, ok := consumed[c]; !ok {
			continue
		}
		producedElsewhere := false
		for _, r := range relevant {
			if r.Produces(c, d) {
				producedElsewhere = true
				break
			}
		}
		if !producedElsewhere {
			return true
		}
	}
	return false
}

// consumedConditions lists every condition some action or goal requires.
func consumedConditions(ps goap.PlanningSystem) map[goap.Condition]struct{} {
	out := make(map[goap.Condition]struct{})
	for _, a := range ps.Actions {
		for c := range a.Preconditions {
			out[c] = struct{}{}
		}
	}
	for _, g := range ps.Goals {
		for c := range g.Preconditions {
			out[c] = struct{}{}
		}
	}
	return out
}
