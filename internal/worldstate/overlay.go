package worldstate

import (
	"context"

	"github.com/metalagman/goap/internal/goap"
)

// WorldStateDeterminer mirrors the planner's collaborator interface.
type WorldStateDeterminer interface {
	DetermineWorldState(ctx context.Context) (goap.WorldState, error)
	DetermineCondition(ctx context.Context, c goap.Condition) (goap.Determination, error)
}

// Overlay forces some determinations on top of another determiner.
type Overlay struct {
	base   WorldStateDeterminer
	forced map[goap.Condition]goap.Determination
}

// NewOverlay wraps base. An empty forced map makes the overlay transparent.
func NewOverlay(base WorldStateDeterminer, forced map[goap.Condition]goap.Determination) *Overlay {
	f := make(map[goap.Condition]goap.Determination, len(forced))
	for c, d := range forced {
		f[c] = d
	}
	return &Overlay{base: base, forced: f}
}

// DetermineWorldState returns the base snapshot with forced values applied.
func (o *Overlay) DetermineWorldState(ctx context.Context) (goap.WorldState, error) {
	state, err := o.base.DetermineWorldState(ctx)
	if err != nil {
		return goap.WorldState{}, err
	}
	if len(o.forced) == 0 {
		return state, nil
	}
	values := state.Values()
	for c, d := range o.forced {
		values[c] = d
	}
	return goap.NewWorldState(values), nil
}

// DetermineCondition answers forced conditions without calling the base.
func (o *Overlay) DetermineCondition(ctx context.Context, c goap.Condition) (goap.Determination, error) {
	if d, ok := o.forced[c]; ok && d.Known() {
		return d, nil
	}
	return o.base.DetermineCondition(ctx, c)
}
