package goap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan_SameShapeComparesNamesOnly(t *testing.T) {
	t.Parallel()

	open := Action{Name: "open", Cost: 1}
	openExpensive := Action{Name: "open", Cost: 7, Effects: map[Condition]Determination{"x": True}}
	walk := Action{Name: "walk"}

	a := Plan{Actions: []Action{open, walk}, Goal: Goal{Name: "g1"}}
	b := Plan{Actions: []Action{openExpensive, walk}, Goal: Goal{Name: "g2"}}
	c := Plan{Actions: []Action{walk, open}}

	assert.True(t, a.SameShape(b))
	assert.Equal(t, a.Shape(), b.Shape())
	assert.False(t, a.SameShape(c))
	assert.False(t, a.SameShape(Plan{}))
}

func TestPlan_NetValue(t *testing.T) {
	t.Parallel()

	p := Plan{
		Actions: []Action{{Name: "a", Cost: 2, Value: 1}, {Name: "b", Cost: 3}},
		Goal:    Goal{Name: "g", Value: 10},
	}

	assert.InDelta(t, 5.0, p.Cost(), 1e-9)
	assert.InDelta(t, 6.0, p.NetValue(), 1e-9)
	assert.True(t, p.Contains("b"))
	assert.False(t, p.Contains("c"))
	assert.Equal(t, "g: a -> b", p.String())
	assert.Equal(t, "g: (already satisfied)", Plan{Goal: Goal{Name: "g"}}.String())
}

func TestAction_Conditions(t *testing.T) {
	t.Parallel()

	a := Action{
		Name:          "a",
		Preconditions: map[Condition]Determination{"p": True, "shared": False},
		Effects:       map[Condition]Determination{"e": True, "shared": True},
	}

	assert.Equal(t, []Condition{"e", "p", "shared"}, a.Conditions())
	assert.True(t, a.Produces("e", True))
	assert.False(t, a.Produces("e", False))
	assert.False(t, a.Produces("p", True))
}

func TestPlanningSystem_WithActionsKeepsGoals(t *testing.T) {
	t.Parallel()

	goals := []Goal{{Name: "g", Preconditions: map[Condition]Determination{"x": True}}}
	ps := NewPlanningSystem([]Action{{Name: "a"}, {Name: "b"}}, goals)
	narrowed := ps.WithActions([]Action{{Name: "b"}})

	assert.Equal(t, []string{"a", "b"}, ps.ActionNames())
	assert.Equal(t, []string{"b"}, narrowed.ActionNames())
	assert.Equal(t, ps.Goals, narrowed.Goals)

	_, ok := narrowed.Action("a")
	assert.False(t, ok)
	g, ok := narrowed.Goal("g")
	assert.True(t, ok)
	assert.Equal(t, []Condition{"x"}, g.Conditions())
	assert.Equal(t, []Condition{"x"}, ps.Conditions())
}
