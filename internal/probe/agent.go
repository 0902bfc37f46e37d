package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/metalagman/ainvoke"
	"github.com/metalagman/goap/internal/config"
	"github.com/metalagman/goap/internal/goap"
	"github.com/rs/zerolog/log"
)

type agentSpec struct {
	defaultSubcommand string
	extraFlags        []string
}

var agentSpecs = map[string]agentSpec{
	"codex": {
		defaultSubcommand: "exec",
		extraFlags:        []string{"--skip-git-repo-check"},
	},
	"opencode": {
		defaultSubcommand: "run",
	},
	"gemini": {
		extraFlags: []string{"--output-format", "text"},
	},
	"claude": {
		extraFlags: []string{"--output-format", "text", "--print"},
	},
}

// AgentRequest is the input handed to the agent.
type AgentRequest struct {
	Condition   string `json:"condition"`
	Description string `json:"description,omitempty"`
}

// AgentResponse is the output expected from the agent.
type AgentResponse struct {
	Determination string `json:"determination"`
	Evidence      string `json:"evidence,omitempty"`
}

const agentInputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "condition": { "type": "string" },
    "description": { "type": "string" }
  },
  "required": ["condition"]
}`

const agentOutputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "determination": { "enum": ["TRUE", "FALSE", "UNKNOWN"] },
    "evidence": { "type": "string" }
  },
  "required": ["determination"]
}`

// AgentProbe asks an agent CLI whether a condition holds.
type AgentProbe struct {
	runner ainvoke.Runner
	model  string
	// Describe returns a description of c for the prompt. Optional.
	Describe func(c goap.Condition) string
	// Stderr receives the agent's stderr. Defaults to io.Discard.
	Stderr io.Writer
}

// NewAgentProbe prepares the agent command from cfg.
func NewAgentProbe(cfg config.ProbeConfig) (*AgentProbe, error) {
	cmd, err := agentCmd(cfg)
	if err != nil {
		return nil, err
	}
	useTTY := false
	if cfg.UseTTY != nil {
		useTTY = *cfg.UseTTY
	}
	runner, err := ainvoke.NewRunner(ainvoke.AgentConfig{
		Cmd:    cmd,
		UseTTY: useTTY,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent runner: %w", err)
	}
	return &AgentProbe{runner: runner, model: cfg.Model}, nil
}

func agentCmd(cfg config.ProbeConfig) ([]string, error) {
	if len(cfg.Cmd) > 0 {
		return cfg.Cmd, nil
	}
	spec, ok := agentSpecs[cfg.Agent]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", cfg.Agent)
	}
	out := []string{cfg.Agent}
	if spec.defaultSubcommand != "" {
		out = append(out, spec.defaultSubcommand)
	}
	if cfg.Model != "" {
		out = append(out, "--model", cfg.Model)
	}
	return append(out, spec.extraFlags...), nil
}

// Probe runs the agent in a scratch directory and parses its verdict.
func (p *AgentProbe) Probe(ctx context.Context, c goap.Condition) (goap.Determination, error) {
	runDir, err := os.MkdirTemp("", "goap-probe-*")
	if err != nil {
		return goap.Unknown, fmt.Errorf("create probe dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(runDir) }()

	req := AgentRequest{Condition: string(c)}
	if p.Describe != nil {
		req.Description = p.Describe(c)
	}
	inv := ainvoke.Invocation{
		RunDir:       runDir,
		SystemPrompt: agentPrompt(req, p.model),
		Input:        req,
		InputSchema:  agentInputSchema,
		OutputSchema: agentOutputSchema,
	}

	stderr := p.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	log.Debug().Str("condition", string(c)).Str("dir", runDir).Msg("running probe agent")
	stdout, _, _, err := p.runner.Run(ctx, inv, ainvoke.WithStdout(io.Discard), ainvoke.WithStderr(stderr))
	if err != nil {
		return goap.Unknown, fmt.Errorf("run probe agent: %w", err)
	}
	return parseAgentOutput(stdout, filepath.Join(runDir, "output.json"))
}

// parseAgentOutput reads the verdict from stdout, falling back to the
// output file the agent may have written instead.
func parseAgentOutput(stdout []byte, outputPath string) (goap.Determination, error) {
	var resp AgentResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(stdout))), &resp); err != nil || resp.Determination == "" {
		data, readErr := os.ReadFile(outputPath)
		if readErr != nil {
			return goap.Unknown, fmt.Errorf("parse agent output: no verdict on stdout and %w", readErr)
		}
		if err := json.Unmarshal(data, &resp); err != nil {
			return goap.Unknown, fmt.Errorf("parse agent output: %w", err)
		}
	}
	d, err := goap.ParseDetermination(resp.Determination)
	if err != nil {
		return goap.Unknown, fmt.Errorf("parse agent output: %w", err)
	}
	return d, nil
}

func agentPrompt(req AgentRequest, modelName string) string {
	var b strings.Builder
	b.WriteString("You are a goap condition probe. Follow the instructions strictly.\n")
	b.WriteString("- Decide whether the condition in 'condition' currently holds.\n")
	b.WriteString("- Inspect only what is needed to decide. Do NOT change any files or state.\n")
	b.WriteString("- Answer with determination TRUE or FALSE. Use UNKNOWN only when it cannot be decided.\n")
	b.WriteString("- Put a one-line justification in 'evidence'.\n")
	if req.Description != "" {
		b.WriteString("Condition meaning: ")
		b.WriteString(req.Description)
		b.WriteString("\n")
	}
	if modelName != "" {
		b.WriteString("- Use model hint: ")
		b.WriteString(modelName)
		b.WriteString(" (if relevant).\n")
	}
	return b.String()
}
