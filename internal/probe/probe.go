// Package probe resolves single conditions authoritatively by running an
// external command or agent.
package probe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/metalagman/goap/internal/config"
	"github.com/metalagman/goap/internal/goap"
)

// ErrNoProbe is returned when a condition has no probe configured.
var ErrNoProbe = errors.New("no probe configured")

// Prober resolves one condition.
type Prober interface {
	Probe(ctx context.Context, c goap.Condition) (goap.Determination, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, c goap.Condition) (goap.Determination, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, c goap.Condition) (goap.Determination, error) {
	return f(ctx, c)
}

type options struct {
	describe func(c goap.Condition) string
}

// Option configures probe construction.
type Option func(*options)

// WithDescriber supplies condition descriptions to agent probes.
func WithDescriber(fn func(c goap.Condition) string) Option {
	return func(o *options) {
		o.describe = fn
	}
}

// New builds the prober described by cfg.
func New(name string, cfg config.ProbeConfig, workDir string, opts ...Option) (Prober, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var p Prober
	switch cfg.Type {
	case config.ProbeTypeCommand:
		if len(cfg.Cmd) == 0 {
			return nil, fmt.Errorf("probe %q: command probe requires cmd", name)
		}
		p = &CommandProbe{Cmd: cfg.Cmd, Dir: workDir}
	case config.ProbeTypeAgent:
		ap, err := NewAgentProbe(cfg)
		if err != nil {
			return nil, fmt.Errorf("probe %q: %w", name, err)
		}
		ap.Describe = o.describe
		p = ap
	default:
		return nil, fmt.Errorf("probe %q: unknown type %q", name, cfg.Type)
	}
	if cfg.Timeout > 0 {
		p = withTimeout(p, cfg)
	}
	return p, nil
}

func withTimeout(p Prober, cfg config.ProbeConfig) Prober {
	return ProberFunc(func(ctx context.Context, c goap.Condition) (goap.Determination, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		return p.Probe(ctx, c)
	})
}

// Router names the probe responsible for a condition.
type Router func(c goap.Condition) (string, bool)

// Set dispatches conditions to named probes.
type Set struct {
	probes map[string]Prober
	route  Router
}

// NewSet builds every configured probe. Probe names are matched
// case-insensitively.
func NewSet(cfgs map[string]config.ProbeConfig, route Router, workDir string, opts ...Option) (*Set, error) {
	s := &Set{probes: make(map[string]Prober, len(cfgs)), route: route}
	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, err := New(name, cfgs[name], workDir, opts...)
		if err != nil {
			return nil, err
		}
		s.probes[strings.ToLower(name)] = p
	}
	return s, nil
}

// Add registers a prober under name, replacing any existing one.
func (s *Set) Add(name string, p Prober) {
	s.probes[strings.ToLower(name)] = p
}

// Has reports whether a probe with that name exists.
func (s *Set) Has(name string) bool {
	_, ok := s.probes[strings.ToLower(name)]
	return ok
}

// Names returns the registered probe names, sorted.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.probes))
	for name := range s.probes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the probe name and prober responsible for c.
func (s *Set) Lookup(c goap.Condition) (string, Prober, error) {
	name, ok := s.route(c)
	if !ok {
		return "", nil, fmt.Errorf("condition %s: %w", c, ErrNoProbe)
	}
	p, ok := s.probes[strings.ToLower(name)]
	if !ok {
		return "", nil, fmt.Errorf("condition %s: probe %q: %w", c, name, ErrNoProbe)
	}
	return name, p, nil
}

// Probe resolves c with its routed probe.
func (s *Set) Probe(ctx context.Context, c goap.Condition) (goap.Determination, error) {
	name, p, err := s.Lookup(c)
	if err != nil {
		return goap.Unknown, err
	}
	d, err := p.Probe(ctx, c)
	if err != nil {
		return goap.Unknown, fmt.Errorf("probe %s for %s: %w", name, c, err)
	}
	return d, nil
}
