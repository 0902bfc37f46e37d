package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/metalagman/goap/internal/goap"
	"github.com/rs/zerolog/log"
)

// ConditionEnv carries the probed condition name to commands.
const ConditionEnv = "GOAP_CONDITION"

// CommandProbe runs a command and reads its exit code: 0 is TRUE, 1 is FALSE.
// Any other outcome is an error.
type CommandProbe struct {
	Cmd []string
	Dir string
}

// Probe runs the command for c.
func (p *CommandProbe) Probe(ctx context.Context, c goap.Condition) (goap.Determination, error) {
	if len(p.Cmd) == 0 {
		return goap.Unknown, fmt.Errorf("empty probe command")
	}
	log.Debug().Str("condition", string(c)).Strs("cmd", p.Cmd).Msg("running probe command")
	cmd := exec.CommandContext(ctx, p.Cmd[0], p.Cmd[1:]...)
	cmd.Dir = p.Dir
	cmd.Env = append(os.Environ(), ConditionEnv+"="+string(c))
	out, err := cmd.CombinedOutput()
	if err == nil {
		return goap.True, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return goap.Unknown, fmt.Errorf("run probe command: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return goap.False, nil
	}
	return goap.Unknown, fmt.Errorf("run probe command: %w: %s", err, strings.TrimSpace(string(out)))
}
