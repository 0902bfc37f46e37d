// Package astar implements forward A* search over concrete world states.
package astar

import (
	"container/heap"
	"context"
	"errors"
	"fmt"

	"github.com/metalagman/goap/internal/goap"
)

// DefaultMaxExpansions bounds the number of states popped from the open set.
const DefaultMaxExpansions = 10000

// ErrSearchExhausted is returned when the expansion budget runs out before
// the search space does.
var ErrSearchExhausted = errors.New("search expansion budget exhausted")

// Option configures a Searcher.
type Option func(*Searcher)

// WithMaxExpansions overrides DefaultMaxExpansions. Non-positive values are
// ignored.
func WithMaxExpansions(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.maxExpansions = n
		}
	}
}

// Searcher finds the cheapest action sequence from a state to a goal.
// It is stateless between calls and safe for concurrent use.
type Searcher struct {
	maxExpansions int
}

// New creates a Searcher.
func New(opts ...Option) *Searcher {
	s := &Searcher{maxExpansions: DefaultMaxExpansions}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns a plan from start to goal, or nil if the goal is
// unreachable with the given actions. An already satisfied goal yields an
// empty plan.
func (s *Searcher) Search(ctx context.Context, start goap.WorldState, actions []goap.Action, goal goap.Goal) (*goap.Plan, error) {
	if goal.SatisfiedBy(start) {
		return &goap.Plan{Goal: goal}, nil
	}

	ordered := goap.SortActions(append([]goap.Action(nil), actions...))
	minCost := minActionCost(ordered)
	maxEffects := maxActionEffects(ordered)

	open := &nodeQueue{}
	best := map[string]float64{start.Key(): 0}
	seq := 0
	heap.Push(open, &node{state: start, h: heuristic(start, goal, minCost, maxEffects), seq: seq})

	expansions := 0
	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search %s: %w", goal.Name, err)
		}
		current := heap.Pop(open).(*node)
		if g, ok := best[current.state.Key()]; ok && g < current.g {
			continue
		}
		if goal.SatisfiedBy(current.state) {
			return current.plan(goal), nil
		}
		expansions++
		if expansions > s.maxExpansions {
			return nil, fmt.Errorf("search %s after %d expansions: %w", goal.Name, s.maxExpansions, ErrSearchExhausted)
		}

		currentKey := current.state.Key()
		for i := range ordered {
			action := &ordered[i]
			if !action.ApplicableTo(current.state) {
				continue
			}
			next := current.state.Apply(action.Effects)
			key := next.Key()
			if key == currentKey {
				continue
			}
			g := current.g + action.Cost
			if prev, ok := best[key]; ok && prev <= g {
				continue
			}
			best[key] = g
			seq++
			heap.Push(open, &node{
				state:  next,
				g:      g,
				h:      heuristic(next, goal, minCost, maxEffects),
				seq:    seq,
				parent: current,
				action: action,
			})
		}
	}
	return nil, nil
}

// heuristic is a lower bound on the remaining cost: one action settles at
// most maxEffects unmet goal conditions and costs at least minCost.
func heuristic(s goap.WorldState, goal goap.Goal, minCost float64, maxEffects int) float64 {
	if maxEffects == 0 {
		return 0
	}
	unmet := s.Unsatisfied(goal.Preconditions)
	steps := (unmet + maxEffects - 1) / maxEffects
	return float64(steps) * minCost
}

func maxActionEffects(actions []goap.Action) int {
	most := 0
	for _, a := range actions {
		most = max(most, len(a.Effects))
	}
	return most
}

func minActionCost(actions []goap.Action) float64 {
	if len(actions) == 0 {
		return 0
	}
	lowest := actions[0].Cost
	for _, a := range actions[1:] {
		if a.Cost < lowest {
			lowest = a.Cost
		}
	}
	if lowest < 0 {
		return 0
	}
	return lowest
}
