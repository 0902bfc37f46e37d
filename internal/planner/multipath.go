package planner

import (
	"context"
	"fmt"

	"github.com/metalagman/goap/internal/goap"
)

// ApplyMultiPathPruning keeps only the actions that appear in a plan to some
// goal, either from the current world state or from a state where one
// referenced condition is flipped. Goals are carried over unchanged.
func (p *Planner) ApplyMultiPathPruning(ctx context.Context, ps goap.PlanningSystem) (goap.PlanningSystem, error) {
	pruned, _, err := p.applyMultiPathPruning(ctx, ps)
	return pruned, err
}

func (p *Planner) applyMultiPathPruning(ctx context.Context, ps goap.PlanningSystem) (goap.PlanningSystem, []goap.Plan, error) {
	allPlans, err := p.goalsPlanner.PlansToGoals(ctx, ps)
	if err != nil {
		return goap.PlanningSystem{}, nil, fmt.Errorf("plans to goals: %w", err)
	}

	alternatives, err := p.alternativePlans(ctx, ps)
	if err != nil {
		return goap.PlanningSystem{}, nil, err
	}
	combined := make([]goap.Plan, 0, len(allPlans)+len(alternatives))
	combined = append(combined, allPlans...)
	combined = append(combined, alternatives...)

	kept := make([]goap.Action, 0, len(ps.Actions))
	for _, a := range ps.Actions {
		for _, plan := range combined {
			if plan.Contains(a.Name) {
				kept = append(kept, a)
				break
			}
		}
	}

	p.logger.Debug().
		Int("plans", len(allPlans)).
		Int("alternative_plans", len(alternatives)).
		Int("considered", len(combined)).
		Int("kept", len(kept)).
		Msg("multi-path pruning")
	return ps.WithActions(kept), combined, nil
}

// alternativePlans searches every goal from both variants of each condition
// that the actions reference and the current state contains.
func (p *Planner) alternativePlans(ctx context.Context, ps goap.PlanningSystem) ([]goap.Plan, error) {
	state, err := p.WorldState(ctx)
	if err != nil {
		return nil, err
	}

	referenced := make(map[goap.Condition]struct{})
	for _, a := range ps.Actions {
		for _, c := range a.Conditions() {
			referenced[c] = struct{}{}
		}
	}

	var plans []goap.Plan
	for _, c := range state.Conditions() {
		if _, ok := referenced[c]; !ok {
			continue
		}
		for _, variant := range state.Variants(c) {
			for _, goal := range ps.Goals {
				plan, err := p.search(ctx, variant, ps.Actions, goal)
				if err != nil {
					return nil, err
				}
				if plan != nil {
					plans = append(plans, *plan)
				}
			}
		}
	}
	return plans, nil
}
