package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/metalagman/goap/internal/goap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Sample(t *testing.T) {
	t.Parallel()

	d, err := Parse(Sample)
	require.NoError(t, err)

	ps := d.System()
	assert.Len(t, ps.Actions, 6)
	require.Len(t, ps.Goals, 1)
	assert.Equal(t, "enter", ps.Goals[0].Name)
	assert.InDelta(t, 10.0, ps.Goals[0].Value, 1e-9)

	lock, ok := ps.Action("lock_door")
	require.True(t, ok)
	assert.Equal(t, goap.True, lock.Preconditions["doorOpen"])
	assert.Equal(t, goap.False, lock.Effects["doorOpen"])

	probe, ok := d.ProbeFor("doorOpen")
	assert.True(t, ok)
	assert.Equal(t, "door_sensor", probe)
	_, ok = d.ProbeFor("inside")
	assert.False(t, ok)

	assert.Equal(t, []goap.Condition{"doorOpen", "hasKey", "inside", "windowOpen"}, d.ConditionNames())
	assert.Equal(t, "the front door is open", d.Describe("doorOpen"))
	assert.Equal(t, "chimney", d.Describe("chimney"))
}

func TestParse_AcceptsStringDeterminations(t *testing.T) {
	t.Parallel()

	d, err := Parse([]byte(`
actions:
  - name: a
    preconditions: { x: "FALSE" }
    effects: { x: "TRUE" }
goals:
  - name: g
    preconditions: { x: yes }
`))
	require.NoError(t, err)
	ps := d.System()
	assert.Equal(t, goap.False, ps.Actions[0].Preconditions["x"])
	assert.Equal(t, goap.True, ps.Goals[0].Preconditions["x"])
}

func TestParse_AcceptsYAMLBooleans(t *testing.T) {
	t.Parallel()

	d, err := Parse([]byte(`
actions:
  - name: a
    preconditions: { x: False }
    effects: { x: True }
goals:
  - name: g
    preconditions: { x: true }
`))
	require.NoError(t, err)
	ps := d.System()
	assert.Equal(t, goap.False, ps.Actions[0].Preconditions["x"])
	assert.Equal(t, goap.True, ps.Actions[0].Effects["x"])
	assert.Equal(t, goap.True, ps.Goals[0].Preconditions["x"])
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"duplicate action": `
actions:
  - { name: a, effects: { x: true } }
  - { name: a, effects: { y: true } }
goals:
  - { name: g, preconditions: { x: true } }
`,
		"duplicate goal": `
actions:
  - { name: a, effects: { x: true } }
goals:
  - { name: g, preconditions: { x: true } }
  - { name: g, preconditions: { x: false } }
`,
		"unknown in action": `
actions:
  - { name: a, effects: { x: unknown } }
goals:
  - { name: g, preconditions: { x: true } }
`,
		"undeclared condition": `
conditions:
  x: {}
actions:
  - { name: a, effects: { y: true } }
goals:
  - { name: g, preconditions: { x: true } }
`,
		"no goals": `
actions:
  - { name: a, effects: { x: true } }
`,
		"missing name": `
actions:
  - { effects: { x: true } }
goals:
  - { name: g, preconditions: { x: true } }
`,
		"negative cost": `
actions:
  - { name: a, cost: -1, effects: { x: true } }
goals:
  - { name: g, preconditions: { x: true } }
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_RejectsBadDetermination(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`
actions:
  - { name: a, effects: { x: maybe } }
goals:
  - { name: g, preconditions: { x: true } }
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maybe")
}

func TestCheckProbes(t *testing.T) {
	t.Parallel()

	d, err := Parse(Sample)
	require.NoError(t, err)

	require.NoError(t, d.CheckProbes(func(name string) bool { return name == "door_sensor" }))
	err = d.CheckProbes(func(string) bool { return false })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, Sample, 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, d.Goals, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
