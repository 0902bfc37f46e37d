package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/metalagman/goap/internal/config"
	"github.com/metalagman/goap/internal/goap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestCommandProbe_ExitCodes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tests := []struct {
		name    string
		body    string
		want    goap.Determination
		wantErr bool
	}{
		{name: "exit 0 is true", body: "exit 0\n", want: goap.True},
		{name: "exit 1 is false", body: "exit 1\n", want: goap.False},
		{name: "exit 2 is error", body: "echo broken >&2\nexit 2\n", want: goap.Unknown, wantErr: true},
	}
	for i, tt := range tests {
		script := writeScript(t, dir, "probe"+string(rune('a'+i))+".sh", tt.body)
		t.Run(tt.name, func(t *testing.T) {
			p := &CommandProbe{Cmd: []string{script}, Dir: dir}
			got, err := p.Probe(context.Background(), "doorOpen")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "broken")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandProbe_PassesConditionEnv(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	script := writeScript(t, dir, "env.sh", `[ "$GOAP_CONDITION" = "hasKey" ]`+"\n")
	p := &CommandProbe{Cmd: []string{script}, Dir: dir}

	got, err := p.Probe(context.Background(), "hasKey")
	require.NoError(t, err)
	assert.Equal(t, goap.True, got)

	got, err = p.Probe(context.Background(), "doorOpen")
	require.NoError(t, err)
	assert.Equal(t, goap.False, got)
}

func TestNew_Timeout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	script := writeScript(t, dir, "slow.sh", "sleep 5\n")
	p, err := New("slow", config.ProbeConfig{
		Type:    config.ProbeTypeCommand,
		Cmd:     []string{script},
		Timeout: 50 * time.Millisecond,
	}, dir)
	require.NoError(t, err)

	_, err = p.Probe(context.Background(), "doorOpen")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()
	_, err := New("x", config.ProbeConfig{Type: config.ProbeTypeCommand}, "")
	assert.Error(t, err)

	_, err = New("x", config.ProbeConfig{Type: "smoke-signal"}, "")
	assert.Error(t, err)

	_, err = New("x", config.ProbeConfig{Type: config.ProbeTypeAgent, Agent: "unknown-agent"}, "")
	assert.Error(t, err)
}

func TestSet_Routing(t *testing.T) {
	t.Parallel()
	route := func(c goap.Condition) (string, bool) {
		switch c {
		case "doorOpen":
			return "Door_Sensor", true
		case "hasKey":
			return "missing", true
		}
		return "", false
	}
	s, err := NewSet(nil, route, "")
	require.NoError(t, err)
	s.Add("door_sensor", ProberFunc(func(context.Context, goap.Condition) (goap.Determination, error) {
		return goap.False, nil
	}))

	assert.True(t, s.Has("DOOR_SENSOR"))
	assert.Equal(t, []string{"door_sensor"}, s.Names())

	got, err := s.Probe(context.Background(), "doorOpen")
	require.NoError(t, err)
	assert.Equal(t, goap.False, got)

	_, err = s.Probe(context.Background(), "hasKey")
	assert.ErrorIs(t, err, ErrNoProbe)

	_, err = s.Probe(context.Background(), "inside")
	assert.ErrorIs(t, err, ErrNoProbe)
}

func TestSet_WrapsProbeErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	s, err := NewSet(nil, func(goap.Condition) (string, bool) { return "p", true }, "")
	require.NoError(t, err)
	s.Add("p", ProberFunc(func(context.Context, goap.Condition) (goap.Determination, error) {
		return goap.Unknown, boom
	}))

	_, err = s.Probe(context.Background(), "doorOpen")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "probe p for doorOpen")
}

func TestAgentCmd(t *testing.T) {
	t.Parallel()
	cmd, err := agentCmd(config.ProbeConfig{Agent: "codex", Model: "gpt-5"})
	require.NoError(t, err)
	assert.Equal(t, []string{"codex", "exec", "--model", "gpt-5", "--skip-git-repo-check"}, cmd)

	cmd, err = agentCmd(config.ProbeConfig{Agent: "claude", Cmd: []string{"my-agent"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"my-agent"}, cmd)
}

func TestParseAgentOutput(t *testing.T) {
	t.Parallel()
	d, err := parseAgentOutput([]byte(`{"determination":"TRUE","evidence":"door is ajar"}`), "")
	require.NoError(t, err)
	assert.Equal(t, goap.True, d)

	dir := t.TempDir()
	out := filepath.Join(dir, "output.json")
	require.NoError(t, os.WriteFile(out, []byte(`{"determination":"FALSE"}`), 0o600))
	d, err = parseAgentOutput([]byte("thinking..."), out)
	require.NoError(t, err)
	assert.Equal(t, goap.False, d)

	_, err = parseAgentOutput([]byte("nothing"), filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}

func TestAgentProbe_Run(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "agent.sh", `cat > /dev/null
RESP='{"determination":"TRUE","evidence":"sensor says open"}'
echo "$RESP" > output.json
echo "$RESP"
`)
	p, err := NewAgentProbe(config.ProbeConfig{Type: config.ProbeTypeAgent, Cmd: []string{script}})
	require.NoError(t, err)
	p.Describe = func(c goap.Condition) string { return "whether " + string(c) }

	got, err := p.Probe(context.Background(), "doorOpen")
	require.NoError(t, err)
	assert.Equal(t, goap.True, got)
}
