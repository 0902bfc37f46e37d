package planner

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metalagman/goap/internal/goap"
	"github.com/metalagman/goap/internal/goap/astar"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// houseSystem has a cheap route through the door, a pricier route through
// the window and a few actions that only look related.
func houseSystem() goap.PlanningSystem {
	actions := []goap.Action{
		{Name: "get_key", Effects: cond("hasKey", goap.True), Cost: 1},
		{Name: "unlock_door", Preconditions: cond("hasKey", goap.True), Effects: cond("doorOpen", goap.True), Cost: 1},
		{Name: "enter_door", Preconditions: cond("doorOpen", goap.True), Effects: cond("inside", goap.True), Cost: 1},
		{Name: "climb_window", Preconditions: cond("windowOpen", goap.True), Effects: cond("inside", goap.True), Cost: 2},
		{Name: "break_window", Effects: cond("windowOpen", goap.True), Cost: 5},
		{Name: "lock_door", Preconditions: cond("doorOpen", goap.True), Effects: cond("doorOpen", goap.False), Cost: 1},
		{Name: "paint_fence", Effects: cond("fencePainted", goap.True), Cost: 1},
	}
	goals := []goap.Goal{{Name: "enter", Preconditions: cond("inside", goap.True), Value: 10}}
	return goap.NewPlanningSystem(actions, goals)
}

func houseState() goap.WorldState {
	return goap.NewWorldState(cond(
		"hasKey", goap.False,
		"doorOpen", goap.False,
		"windowOpen", goap.False,
		"inside", goap.False,
	))
}

func TestFindActionsRelevantToGoals_BackwardChain(t *testing.T) {
	t.Parallel()

	ps := goap.NewPlanningSystem([]goap.Action{
		{Name: "C", Preconditions: cond("b", goap.True), Effects: cond("goal", goap.True)},
		{Name: "noise", Effects: cond("z", goap.True)},
		{Name: "A", Effects: cond("a", goap.True)},
		{Name: "B", Preconditions: cond("a", goap.True), Effects: cond("b", goap.True)},
	}, []goap.Goal{{Name: "g", Preconditions: cond("goal", goap.True)}})

	got := goap.ActionNames(FindActionsRelevantToGoals(ps))
	if diff := cmp.Diff([]string{"A", "B", "C"}, got); diff != "" {
		t.Fatalf("relevant actions mismatch (-want +got):\n%s", diff)
	}
}

func TestFindActionsRelevantToGoals_UnrelatedActionExcluded(t *testing.T) {
	t.Parallel()

	a1 := goap.Action{Name: "A1", Effects: cond("conditionX", goap.True)}
	a2 := goap.Action{Name: "A2", Effects: cond("conditionY", goap.True)}
	goal := goap.Goal{Name: "g", Preconditions: cond("conditionX", goap.True)}

	got := goap.ActionNames(FindActionsRelevantToGoals(goap.NewPlanningSystem([]goap.Action{a1, a2}, []goap.Goal{goal})))
	assert.Equal(t, []string{"A1"}, got)
}

func TestFindActionsRelevantToGoals_ReroutingActions(t *testing.T) {
	t.Parallel()

	goal := goap.Goal{Name: "g", Preconditions: cond("conditionX", goap.True)}
	a1 := goap.Action{Name: "A1", Preconditions: cond("ready", goap.True), Effects: cond("conditionX", goap.True)}

	tests := []struct {
		name   string
		action goap.Action
		kept   bool
	}{
		{
			name:   "effect touches relevant condition",
			action: goap.Action{Name: "A2", Effects: cond("conditionX", goap.False)},
			kept:   true,
		},
		{
			name:   "precondition references relevant condition",
			action: goap.Action{Name: "A2", Preconditions: cond("conditionX", goap.True), Effects: cond("conditionY", goap.True)},
			kept:   true,
		},
		{
			name:   "only producer of a consumed value",
			action: goap.Action{Name: "A2", Effects: cond("fuel", goap.True)},
			kept:   true,
		},
		{
			name:   "no overlap",
			action: goap.Action{Name: "A2", Effects: cond("conditionY", goap.True)},
			kept:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// refuel consumes fuel but is not itself relevant to the goal.
			refuel := goap.Action{Name: "refuel", Preconditions: cond("fuel", goap.True), Effects: cond("tankFull", goap.True)}
			ps := goap.NewPlanningSystem([]goap.Action{a1, tt.action, refuel}, []goap.Goal{goal})

			got := goap.ActionNames(FindActionsRelevantToGoals(ps))
			assert.Equal(t, tt.kept, contains(got, "A2"), "relevant = %v", got)
			assert.Contains(t, got, "A1")
		})
	}
}

func TestFindActionsRelevantToGoals_UnionOverGoals(t *testing.T) {
	t.Parallel()

	ps := goap.NewPlanningSystem([]goap.Action{
		{Name: "make_x", Effects: cond("x", goap.True)},
		{Name: "make_y", Effects: cond("y", goap.True)},
		{Name: "make_z", Effects: cond("z", goap.True)},
	}, []goap.Goal{
		{Name: "gx", Preconditions: cond("x", goap.True)},
		{Name: "gy", Preconditions: cond("y", goap.True)},
	})

	assert.Equal(t, []string{"make_x", "make_y"}, goap.ActionNames(FindActionsRelevantToGoals(ps)))
}

func TestFindActionsRelevantToGoals_SoleProducersSurvive(t *testing.T) {
	t.Parallel()

	ps := houseSystem()
	got := goap.ActionNames(FindActionsRelevantToGoals(ps))

	for _, name := range []string{"get_key", "unlock_door", "enter_door", "climb_window", "break_window"} {
		assert.Contains(t, got, name)
	}
	assert.Contains(t, got, "lock_door", "lock_door touches doorOpen and is kept for rerouting")
	assert.NotContains(t, got, "paint_fence")
}

func TestPrune_KeepsAlternateRouteActions(t *testing.T) {
	t.Parallel()

	det := &fakeDeterminer{state: houseState()}
	p := New(det, astar.New())
	ps := houseSystem()

	pruned, err := p.Prune(context.Background(), ps)
	require.NoError(t, err)

	want := []string{"climb_window", "enter_door", "get_key", "unlock_door"}
	if diff := cmp.Diff(want, pruned.ActionNames()); diff != "" {
		t.Fatalf("pruned actions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ps.Goals, pruned.Goals)
	assert.Len(t, ps.Actions, 7, "input system must not change")
	assert.Empty(t, det.calls)
}

func TestPrune_IsSubsetOfRelevance(t *testing.T) {
	t.Parallel()

	det := &fakeDeterminer{state: houseState()}
	p := New(det, astar.New())
	ps := houseSystem()

	relevant := goap.ActionNames(FindActionsRelevantToGoals(ps))
	pruned, err := p.Prune(context.Background(), ps)
	require.NoError(t, err)

	for _, name := range pruned.ActionNames() {
		assert.Contains(t, relevant, name)
	}
}

func TestPrune_Idempotent(t *testing.T) {
	t.Parallel()

	det := &fakeDeterminer{state: houseState()}
	p := New(det, astar.New())

	first, err := p.Prune(context.Background(), houseSystem())
	require.NoError(t, err)
	second, err := p.Prune(context.Background(), first)
	require.NoError(t, err)

	if diff := cmp.Diff(first.ActionNames(), second.ActionNames()); diff != "" {
		t.Fatalf("second prune changed the action set (-first +second):\n%s", diff)
	}
}

func TestPrune_LogsSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	det := &fakeDeterminer{state: houseState()}
	p := New(det, astar.New(), WithLogger(zerolog.New(&buf)))

	_, err := p.Prune(context.Background(), houseSystem())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"actions":7`)
	assert.Contains(t, out, `"after_relevance":6`)
	assert.Contains(t, out, `"after_multi_path":4`)
	assert.Contains(t, out, "enter: get_key -> unlock_door -> enter_door")
}

func TestPruneStages_MatchesPrune(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	det := &fakeDeterminer{state: houseState()}
	p := New(det, astar.New(), WithLogger(zerolog.New(&buf)))
	ps := houseSystem()

	res, err := p.PruneStages(context.Background(), ps)
	require.NoError(t, err)

	assert.Equal(t, ps.ActionNames(), res.Input.ActionNames())
	assert.Equal(t, goap.ActionNames(FindActionsRelevantToGoals(ps)), res.Relevant.ActionNames())
	assert.Len(t, res.Relevant.Actions, 6)
	assert.Equal(t, []string{"climb_window", "enter_door", "get_key", "unlock_door"}, res.Pruned.ActionNames())
	assert.NotEmpty(t, res.Plans)

	pruned, err := p.Prune(context.Background(), ps)
	require.NoError(t, err)
	assert.Equal(t, res.Pruned.ActionNames(), pruned.ActionNames())
	assert.Contains(t, buf.String(), `"after_relevance":6`)
}

type stubGoalsPlanner struct {
	plans []goap.Plan
}

func (s stubGoalsPlanner) PlansToGoals(context.Context, goap.PlanningSystem) ([]goap.Plan, error) {
	return s.plans, nil
}

func TestApplyMultiPathPruning_UsesGoalsPlanner(t *testing.T) {
	t.Parallel()

	ps := goap.NewPlanningSystem([]goap.Action{
		{Name: "a", Effects: cond("x", goap.True)},
		{Name: "b", Effects: cond("y", goap.True)},
	}, []goap.Goal{{Name: "g", Preconditions: cond("y", goap.True)}})
	stub := stubGoalsPlanner{plans: []goap.Plan{{Actions: []goap.Action{{Name: "a"}}}}}

	// The empty world state has no conditions to perturb, so only the
	// stubbed plans count.
	p := New(&fakeDeterminer{state: goap.NewWorldState(nil)}, astar.New(), WithGoalsPlanner(stub))

	pruned, err := p.ApplyMultiPathPruning(context.Background(), ps)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, pruned.ActionNames())
}

func TestApplyMultiPathPruning_PerturbationKeepsRecoveryAction(t *testing.T) {
	t.Parallel()

	// candle is only needed if the lamp turns out to be broken.
	ps := goap.NewPlanningSystem([]goap.Action{
		{Name: "switch_on", Preconditions: cond("lampWorks", goap.True), Effects: cond("lit", goap.True), Cost: 1},
		{Name: "candle", Preconditions: cond("lampWorks", goap.False), Effects: cond("lit", goap.True), Cost: 3},
	}, []goap.Goal{{Name: "light", Preconditions: cond("lit", goap.True)}})
	det := &fakeDeterminer{state: goap.NewWorldState(cond("lampWorks", goap.True, "lit", goap.False))}
	p := New(det, astar.New())

	pruned, err := p.ApplyMultiPathPruning(context.Background(), ps)
	require.NoError(t, err)
	assert.Equal(t, []string{"switch_on", "candle"}, pruned.ActionNames())
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func TestApplyMultiPathPruning_DoesNotWriteIntoGoalsPlannerSlice(t *testing.T) {
	t.Parallel()

	ps := goap.NewPlanningSystem([]goap.Action{
		{Name: "switch_on", Preconditions: cond("lampWorks", goap.True), Effects: cond("lit", goap.True), Cost: 1},
		{Name: "candle", Preconditions: cond("lampWorks", goap.False), Effects: cond("lit", goap.True), Cost: 3},
	}, []goap.Goal{{Name: "light", Preconditions: cond("lit", goap.True)}})

	sentinel := goap.Plan{Goal: goap.Goal{Name: "sentinel"}}
	backing := make([]goap.Plan, 1, 8)
	backing[0] = goap.Plan{Goal: ps.Goals[0], Actions: []goap.Action{ps.Actions[0]}}
	spare := backing[:cap(backing)]
	for i := 1; i < len(spare); i++ {
		spare[i] = sentinel
	}

	det := &fakeDeterminer{state: goap.NewWorldState(cond("lampWorks", goap.True, "lit", goap.False))}
	p := New(det, astar.New(), WithGoalsPlanner(stubGoalsPlanner{plans: backing}))

	_, err := p.ApplyMultiPathPruning(context.Background(), ps)
	require.NoError(t, err)
	for i := 1; i < len(spare); i++ {
		assert.Equal(t, "sentinel", spare[i].Goal.Name, "slot %d overwritten", i)
	}
}
