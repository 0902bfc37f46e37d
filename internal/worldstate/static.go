// Package worldstate provides the world state determiners the planner reads
// from: an in-memory one, one backed by the fact store and probes, and an
// overlay for forced assumptions.
package worldstate

import (
	"context"
	"fmt"
	"sync"

	"github.com/metalagman/goap/internal/goap"
)

// Static serves a fixed snapshot and resolves unknowns from a fixed map.
// It counts resolver calls.
type Static struct {
	state    goap.WorldState
	resolved map[goap.Condition]goap.Determination

	mu    sync.Mutex
	calls []goap.Condition
}

// NewStatic creates a Static determiner. Conditions missing from resolved
// resolve to Unknown.
func NewStatic(state goap.WorldState, resolved map[goap.Condition]goap.Determination) *Static {
	r := make(map[goap.Condition]goap.Determination, len(resolved))
	for c, d := range resolved {
		r[c] = d
	}
	return &Static{state: state, resolved: r}
}

// DetermineWorldState returns the snapshot.
func (s *Static) DetermineWorldState(context.Context) (goap.WorldState, error) {
	return s.state, nil
}

// DetermineCondition returns the configured resolution for c.
func (s *Static) DetermineCondition(ctx context.Context, c goap.Condition) (goap.Determination, error) {
	if err := ctx.Err(); err != nil {
		return goap.Unknown, fmt.Errorf("determine condition %s: %w", c, err)
	}
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
	return s.resolved[c], nil
}

// Calls returns the conditions resolved so far, in call order.
func (s *Static) Calls() []goap.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]goap.Condition(nil), s.calls...)
}
