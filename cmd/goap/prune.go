package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/metalagman/goap/internal/goap"
	"github.com/metalagman/goap/internal/history"
	"github.com/metalagman/goap/internal/worldstate"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func pruneCmd() *cobra.Command {
	var markdown bool
	var assumptions []string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Show which actions planning for the catalogue goals actually needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forced, err := parseAssignments(assumptions)
			if err != nil {
				return err
			}
			return runWithApp(cmd, func(ctx context.Context, a *App) error {
				return runPrune(ctx, a, cmd.OutOrStdout(), pruneRequest{Markdown: markdown, Assume: forced})
			})
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the report as markdown")
	cmd.Flags().StringArrayVar(&assumptions, "assume", nil, "force a condition for this run (condition=value), repeatable")
	return cmd
}

type pruneRequest struct {
	Markdown bool
	Assume   map[goap.Condition]goap.Determination
}

type pruneReport struct {
	Before   []string
	Relevant []string
	After    []string
}

func (r pruneReport) removed() []string {
	kept := make(map[string]struct{}, len(r.After))
	for _, name := range r.After {
		kept[name] = struct{}{}
	}
	var out []string
	for _, name := range r.Before {
		if _, ok := kept[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Markdown formats the report as a markdown document.
func (r pruneReport) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Pruning report\n\n")
	sb.WriteString("| stage | actions |\n|---|---|\n")
	fmt.Fprintf(&sb, "| catalogue | %d |\n", len(r.Before))
	fmt.Fprintf(&sb, "| relevant to goals | %d |\n", len(r.Relevant))
	fmt.Fprintf(&sb, "| after multi-path | %d |\n\n", len(r.After))
	sb.WriteString("## Kept\n\n")
	writeList(&sb, r.After)
	sb.WriteString("\n## Removed\n\n")
	writeList(&sb, r.removed())
	return sb.String()
}

func writeList(sb *strings.Builder, names []string) {
	if len(names) == 0 {
		sb.WriteString("_none_\n")
		return
	}
	for _, name := range names {
		fmt.Fprintf(sb, "- `%s`\n", name)
	}
}

func (r pruneReport) table() string {
	kept := make(map[string]struct{}, len(r.After))
	for _, name := range r.After {
		kept[name] = struct{}{}
	}
	relevant := make(map[string]struct{}, len(r.Relevant))
	for _, name := range r.Relevant {
		relevant[name] = struct{}{}
	}
	rows := make([][]string, 0, len(r.Before))
	for _, name := range r.Before {
		_, isRelevant := relevant[name]
		_, isKept := kept[name]
		rows = append(rows, []string{name, yesNo(isRelevant), yesNo(isKept)})
	}
	return renderTable("Pruning", []string{"action", "relevant", "kept"}, rows)
}

func yesNo(b bool) string {
	if b {
		return trueStyle.Render("yes")
	}
	return mutedStyle.Render("no")
}

func runPrune(ctx context.Context, a *App, w io.Writer, req pruneRequest) (err error) {
	ps := a.Domain.System()
	run, err := a.Recorder.Start(ctx, history.KindPrune, "")
	if err != nil {
		return err
	}
	status, summary := history.StatusFailed, ""
	defer func() {
		if err != nil {
			summary = err.Error()
		}
		if finishErr := run.Finish(context.WithoutCancel(ctx), status, summary); finishErr != nil {
			log.Warn().Err(finishErr).Str("run_id", run.ID).Msg("failed to finish run")
		}
	}()

	res, err := a.Planner(worldstate.NewOverlay(a.Determiner, req.Assume)).PruneStages(ctx, ps)
	if err != nil {
		return withStateHint(err)
	}
	report := pruneReport{
		Before:   res.Input.ActionNames(),
		Relevant: res.Relevant.ActionNames(),
		After:    res.Pruned.ActionNames(),
	}
	if err := run.Event(ctx, "prune", "pruned planning system", report); err != nil {
		return err
	}
	status = history.StatusOK
	summary = fmt.Sprintf("%d -> %d actions", len(report.Before), len(report.After))

	if req.Markdown {
		out, err := renderMarkdown(report.Markdown())
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}
	fmt.Fprint(w, report.table())
	return nil
}
