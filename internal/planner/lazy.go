package planner

import (
	"context"
	"fmt"

	"github.com/metalagman/goap/internal/goap"
)

// PlanToGoal plans from the cheap world state snapshot. When exactly one
// condition is unknown, both of its values are searched; the expensive
// resolver runs only if the branches disagree on the plan shape. A nil plan
// with a nil error means no plan exists.
func (p *Planner) PlanToGoal(ctx context.Context, actions []goap.Action, goal goap.Goal) (*goap.Plan, error) {
	start, err := p.WorldState(ctx)
	if err != nil {
		return nil, err
	}
	return p.planToGoalFrom(ctx, start, actions, goal)
}

func (p *Planner) planToGoalFrom(ctx context.Context, start goap.WorldState, actions []goap.Action, goal goap.Goal) (*goap.Plan, error) {
	direct, err := p.search(ctx, start, actions, goal)
	if err != nil {
		return nil, err
	}

	unknowns := start.UnknownConditions()
	switch {
	case len(unknowns) == 0:
		return direct, nil
	case len(unknowns) > 1:
		return nil, &UnsupportedError{Conditions: unknowns}
	}

	c := unknowns[0]
	shapes := make(map[string]struct{}, 3)
	if direct != nil {
		shapes[direct.Shape()] = struct{}{}
	}
	for _, variant := range start.Variants(c) {
		plan, err := p.search(ctx, variant, actions, goal)
		if err != nil {
			return nil, err
		}
		if plan != nil {
			shapes[plan.Shape()] = struct{}{}
		}
	}

	if len(shapes) <= 1 {
		p.logger.Debug().
			Str("goal", goal.Name).
			Str("condition", string(c)).
			Msg("unknown condition does not change the plan")
		return direct, nil
	}

	p.logger.Debug().
		Str("goal", goal.Name).
		Str("condition", string(c)).
		Int("shapes", len(shapes)).
		Msg("resolving unknown condition")
	resolved, err := p.determiner.DetermineCondition(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("determine condition %s: %w", c, err)
	}
	if !resolved.Known() {
		return nil, fmt.Errorf("determine condition %s: %w", c, ErrUnresolvedCondition)
	}
	return p.search(ctx, start.With(c, resolved), actions, goal)
}

func (p *Planner) search(ctx context.Context, state goap.WorldState, actions []goap.Action, goal goap.Goal) (*goap.Plan, error) {
	plan, err := p.searcher.Search(ctx, state, actions, goal)
	if err != nil {
		return nil, fmt.Errorf("search goal %s: %w", goal.Name, err)
	}
	return plan, nil
}
