package worldstate

import (
	"context"
	"fmt"

	"github.com/metalagman/goap/internal/db"
	"github.com/metalagman/goap/internal/goap"
	"github.com/metalagman/goap/internal/probe"
	"github.com/rs/zerolog"
)

// FactStore is the part of db.Store the determiner needs.
type FactStore interface {
	Facts(ctx context.Context) ([]db.Fact, error)
	SetFact(ctx context.Context, c goap.Condition, d goap.Determination, source string) error
}

// ProbeRouter finds the probe responsible for a condition. *probe.Set
// implements it.
type ProbeRouter interface {
	Lookup(c goap.Condition) (string, probe.Prober, error)
}

// Determiner reads the snapshot from stored facts and resolves unknowns
// with probes.
type Determiner struct {
	store      FactStore
	conditions []goap.Condition
	probes     ProbeRouter
	persist    bool
	logger     zerolog.Logger
}

// DeterminerOption configures a Determiner.
type DeterminerOption func(*Determiner)

// WithPersist stores resolved determinations back as facts.
func WithPersist(persist bool) DeterminerOption {
	return func(d *Determiner) {
		d.persist = persist
	}
}

// WithLogger sets the determiner logger.
func WithLogger(logger zerolog.Logger) DeterminerOption {
	return func(d *Determiner) {
		d.logger = logger
	}
}

// NewDeterminer creates a Determiner. conditions is the full catalogue;
// every one of them appears in the snapshot.
func NewDeterminer(store FactStore, conditions []goap.Condition, probes ProbeRouter, opts ...DeterminerOption) *Determiner {
	d := &Determiner{
		store:      store,
		conditions: append([]goap.Condition(nil), conditions...),
		probes:     probes,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetermineWorldState returns every catalogue condition with its stored
// determination, Unknown when nothing is stored. Stored facts for conditions
// outside the catalogue are included as well.
func (d *Determiner) DetermineWorldState(ctx context.Context) (goap.WorldState, error) {
	facts, err := d.store.Facts(ctx)
	if err != nil {
		return goap.WorldState{}, fmt.Errorf("determine world state: %w", err)
	}
	values := make(map[goap.Condition]goap.Determination, len(d.conditions)+len(facts))
	for _, c := range d.conditions {
		values[c] = goap.Unknown
	}
	for _, f := range facts {
		values[f.Condition] = f.Determination
	}
	return goap.NewWorldState(values), nil
}

// DetermineCondition runs the probe routed to c.
func (d *Determiner) DetermineCondition(ctx context.Context, c goap.Condition) (goap.Determination, error) {
	name, p, err := d.probes.Lookup(c)
	if err != nil {
		return goap.Unknown, fmt.Errorf("lookup probe: %w", err)
	}
	det, err := p.Probe(ctx, c)
	if err != nil {
		return goap.Unknown, fmt.Errorf("probe %s for %s: %w", name, c, err)
	}
	d.logger.Info().Str("condition", string(c)).Str("probe", name).Str("determination", det.String()).Msg("condition resolved")
	if d.persist && det.Known() {
		if err := d.store.SetFact(ctx, c, det, "probe:"+name); err != nil {
			return goap.Unknown, fmt.Errorf("persist resolved condition: %w", err)
		}
	}
	return det, nil
}
