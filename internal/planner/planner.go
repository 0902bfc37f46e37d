// Package planner implements the optimizing planning wrapper: lazy resolution
// of unknown conditions around a concrete search, and the two-stage action
// pruning pipeline.
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/metalagman/goap/internal/goap"
	"github.com/rs/zerolog"
)

// WorldStateDeterminer supplies the world state the planner starts from.
type WorldStateDeterminer interface {
	// DetermineWorldState returns a cheap snapshot that may leave
	// conditions Unknown.
	DetermineWorldState(ctx context.Context) (goap.WorldState, error)
	// DetermineCondition resolves exactly one condition authoritatively.
	// It may be slow or have side effects.
	DetermineCondition(ctx context.Context, c goap.Condition) (goap.Determination, error)
}

// Searcher plans over a fully concrete world state. A nil plan with a nil
// error means the goal is unreachable.
type Searcher interface {
	Search(ctx context.Context, state goap.WorldState, actions []goap.Action, goal goap.Goal) (*goap.Plan, error)
}

// GoalsPlanner enumerates plans to every goal of a planning system from the
// current world state.
type GoalsPlanner interface {
	PlansToGoals(ctx context.Context, ps goap.PlanningSystem) ([]goap.Plan, error)
}

// SearchFunc adapts a function to Searcher.
type SearchFunc func(ctx context.Context, state goap.WorldState, actions []goap.Action, goal goap.Goal) (*goap.Plan, error)

// Search calls f.
func (f SearchFunc) Search(ctx context.Context, state goap.WorldState, actions []goap.Action, goal goap.Goal) (*goap.Plan, error) {
	return f(ctx, state, actions, goal)
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger used for decisions and pruning summaries.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithGoalsPlanner replaces the plan enumeration used by multi-path pruning.
func WithGoalsPlanner(gp GoalsPlanner) Option {
	return func(p *Planner) {
		p.goalsPlanner = gp
	}
}

// Planner composes the lazy resolution layer with a concrete search and
// exposes the pruning pipeline. It keeps no state between calls.
type Planner struct {
	determiner   WorldStateDeterminer
	searcher     Searcher
	goalsPlanner GoalsPlanner
	logger       zerolog.Logger
}

// New creates a Planner.
func New(determiner WorldStateDeterminer, searcher Searcher, opts ...Option) *Planner {
	p := &Planner{
		determiner: determiner,
		searcher:   searcher,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.goalsPlanner == nil {
		p.goalsPlanner = p
	}
	return p
}

// WorldState returns the determiner's cheap snapshot.
func (p *Planner) WorldState(ctx context.Context) (goap.WorldState, error) {
	state, err := p.determiner.DetermineWorldState(ctx)
	if err != nil {
		return goap.WorldState{}, fmt.Errorf("determine world state: %w", err)
	}
	return state, nil
}

// Prune narrows the planning system to the actions needed for correct,
// re-routable planning: relevance first, multi-path second.
func (p *Planner) Prune(ctx context.Context, ps goap.PlanningSystem) (goap.PlanningSystem, error) {
	res, err := p.PruneStages(ctx, ps)
	if err != nil {
		return goap.PlanningSystem{}, err
	}
	return res.Pruned, nil
}

// PruneResult records every stage of one Prune call.
type PruneResult struct {
	Input    goap.PlanningSystem
	Relevant goap.PlanningSystem
	Pruned   goap.PlanningSystem
	// Plans are the plans multi-path pruning kept actions for.
	Plans []goap.Plan
}

// PruneStages runs Prune and returns the intermediate systems with it.
func (p *Planner) PruneStages(ctx context.Context, ps goap.PlanningSystem) (PruneResult, error) {
	narrowed := ps.WithActions(FindActionsRelevantToGoals(ps))

	pruned, plans, err := p.applyMultiPathPruning(ctx, narrowed)
	if err != nil {
		return PruneResult{}, err
	}

	planStrs := make([]string, 0, len(plans))
	for _, plan := range plans {
		planStrs = append(planStrs, plan.String())
	}
	p.logger.Info().
		Int("actions", len(ps.Actions)).
		Int("after_relevance", len(narrowed.Actions)).
		Int("after_multi_path", len(pruned.Actions)).
		Strs("plans", planStrs).
		Msg("pruned planning system")
	return PruneResult{Input: ps, Relevant: narrowed, Pruned: pruned, Plans: plans}, nil
}

// PlansToGoals plans to every goal with PlanToGoal and orders the results by
// descending net value, then goal name. Unreachable goals are skipped.
func (p *Planner) PlansToGoals(ctx context.Context, ps goap.PlanningSystem) ([]goap.Plan, error) {
	var plans []goap.Plan
	for _, goal := range ps.Goals {
		plan, err := p.PlanToGoal(ctx, ps.Actions, goal)
		if err != nil {
			return nil, fmt.Errorf("plan to goal %s: %w", goal.Name, err)
		}
		if plan != nil {
			plans = append(plans, *plan)
		}
	}
	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].NetValue() != plans[j].NetValue() {
			return plans[i].NetValue() > plans[j].NetValue()
		}
		return plans[i].Goal.Name < plans[j].Goal.Name
	})
	return plans, nil
}

// BestValuePlanToAnyGoal returns the reachable plan with the highest net
// value, or nil when no goal is reachable.
func (p *Planner) BestValuePlanToAnyGoal(ctx context.Context, ps goap.PlanningSystem) (*goap.Plan, error) {
	plans, err := p.PlansToGoals(ctx, ps)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return &plans[0], nil
}
