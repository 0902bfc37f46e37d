// Package domain loads the action catalogue: declared conditions, actions
// and goals, from a YAML file.
package domain

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/metalagman/goap/internal/goap"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid domain")

// Domain is the parsed catalogue file.
type Domain struct {
	Conditions map[string]ConditionSpec `yaml:"conditions"`
	Actions    []ActionSpec             `yaml:"actions"`
	Goals      []GoalSpec               `yaml:"goals"`
}

// ConditionSpec describes a condition and how to resolve it.
type ConditionSpec struct {
	Description string `yaml:"description"`
	// Probe names the configured probe that resolves the condition.
	Probe string `yaml:"probe"`
}

// ActionSpec is the file form of goap.Action.
type ActionSpec struct {
	Name          string           `yaml:"name"`
	Description   string           `yaml:"description"`
	Cost          float64          `yaml:"cost"`
	Value         float64          `yaml:"value"`
	Preconditions map[string]Value `yaml:"preconditions"`
	Effects       map[string]Value `yaml:"effects"`
}

// GoalSpec is the file form of goap.Goal.
type GoalSpec struct {
	Name          string           `yaml:"name"`
	Description   string           `yaml:"description"`
	Value         float64          `yaml:"value"`
	Preconditions map[string]Value `yaml:"preconditions"`
}

// Value is a determination written as a YAML scalar: true, false, "TRUE".
type Value goap.Determination

// UnmarshalYAML accepts any scalar that goap.ParseDetermination accepts.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: determination must be a scalar", node.Line)
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*v = Value(goap.FromBool(b))
		return nil
	}
	d, err := goap.ParseDetermination(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = Value(d)
	return nil
}

// MarshalYAML writes the determination as a boolean where possible.
func (v Value) MarshalYAML() (any, error) {
	switch goap.Determination(v) {
	case goap.True:
		return true, nil
	case goap.False:
		return false, nil
	default:
		return "UNKNOWN", nil
	}
}

// Load reads and validates a domain file.
func Load(path string) (*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domain: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates a domain document.
func Parse(data []byte) (*Domain, error) {
	var d Domain
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse domain: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks names and references. Action names must be unique because
// plans are compared by their action names.
func (d *Domain) Validate() error {
	if len(d.Actions) == 0 {
		return fmt.Errorf("%w: at least one action is required", ErrInvalid)
	}
	if len(d.Goals) == 0 {
		return fmt.Errorf("%w: at least one goal is required", ErrInvalid)
	}

	actionNames := make(map[string]struct{}, len(d.Actions))
	for i, a := range d.Actions {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return fmt.Errorf("%w: action[%d]: name is required", ErrInvalid, i)
		}
		if _, dup := actionNames[name]; dup {
			return fmt.Errorf("%w: duplicate action name %q", ErrInvalid, name)
		}
		actionNames[name] = struct{}{}
		if a.Cost < 0 {
			return fmt.Errorf("%w: action %q: cost must be >= 0", ErrInvalid, name)
		}
		if len(a.Effects) == 0 {
			return fmt.Errorf("%w: action %q: at least one effect is required", ErrInvalid, name)
		}
		if err := d.checkConditions("action "+name+" precondition", a.Preconditions); err != nil {
			return err
		}
		if err := d.checkConditions("action "+name+" effect", a.Effects); err != nil {
			return err
		}
	}

	goalNames := make(map[string]struct{}, len(d.Goals))
	for i, g := range d.Goals {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return fmt.Errorf("%w: goal[%d]: name is required", ErrInvalid, i)
		}
		if _, dup := goalNames[name]; dup {
			return fmt.Errorf("%w: duplicate goal name %q", ErrInvalid, name)
		}
		goalNames[name] = struct{}{}
		if len(g.Preconditions) == 0 {
			return fmt.Errorf("%w: goal %q: at least one precondition is required", ErrInvalid, name)
		}
		if err := d.checkConditions("goal "+name+" precondition", g.Preconditions); err != nil {
			return err
		}
	}
	return nil
}

func (d *Domain) checkConditions(where string, m map[string]Value) error {
	for c, v := range m {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: %s: empty condition name", ErrInvalid, where)
		}
		if !goap.Determination(v).Known() {
			return fmt.Errorf("%w: %s %q: must be TRUE or FALSE", ErrInvalid, where, c)
		}
		if len(d.Conditions) > 0 {
			if _, ok := d.Conditions[c]; !ok {
				return fmt.Errorf("%w: %s %q: condition is not declared", ErrInvalid, where, c)
			}
		}
	}
	return nil
}

// CheckProbes reports conditions whose probe is not in known.
func (d *Domain) CheckProbes(known func(name string) bool) error {
	for _, c := range d.ConditionNames() {
		probe := d.Conditions[string(c)].Probe
		if probe != "" && !known(probe) {
			return fmt.Errorf("%w: condition %q: unknown probe %q", ErrInvalid, c, probe)
		}
	}
	return nil
}

// ConditionNames returns every condition the domain knows about: declared
// ones plus any referenced by actions and goals. Sorted.
func (d *Domain) ConditionNames() []goap.Condition {
	seen := make(map[goap.Condition]struct{})
	for c := range d.Conditions {
		seen[goap.Condition(c)] = struct{}{}
	}
	for _, c := range d.System().Conditions() {
		seen[c] = struct{}{}
	}
	out := make([]goap.Condition, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProbeFor returns the probe name configured for c, if any.
func (d *Domain) ProbeFor(c goap.Condition) (string, bool) {
	spec, ok := d.Conditions[string(c)]
	if !ok || spec.Probe == "" {
		return "", false
	}
	return spec.Probe, true
}

// Describe returns the declared description of c, or its name.
func (d *Domain) Describe(c goap.Condition) string {
	if spec, ok := d.Conditions[string(c)]; ok && spec.Description != "" {
		return spec.Description
	}
	return string(c)
}

// System converts the catalogue to a planning system.
func (d *Domain) System() goap.PlanningSystem {
	actions := make([]goap.Action, 0, len(d.Actions))
	for _, a := range d.Actions {
		actions = append(actions, goap.Action{
			Name:          strings.TrimSpace(a.Name),
			Preconditions: toDeterminations(a.Preconditions),
			Effects:       toDeterminations(a.Effects),
			Cost:          a.Cost,
			Value:         a.Value,
		})
	}
	goals := make([]goap.Goal, 0, len(d.Goals))
	for _, g := range d.Goals {
		goals = append(goals, goap.Goal{
			Name:          strings.TrimSpace(g.Name),
			Preconditions: toDeterminations(g.Preconditions),
			Value:         g.Value,
		})
	}
	return goap.PlanningSystem{Actions: actions, Goals: goals}
}

func toDeterminations(m map[string]Value) map[goap.Condition]goap.Determination {
	out := make(map[goap.Condition]goap.Determination, len(m))
	for c, v := range m {
		out[goap.Condition(c)] = goap.Determination(v)
	}
	return out
}
