package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/metalagman/goap/internal/goap"
	"github.com/metalagman/goap/internal/history"
	"github.com/metalagman/goap/internal/planner"
	"github.com/metalagman/goap/internal/worldstate"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func planCmd() *cobra.Command {
	var assumptions []string
	var best bool
	cmd := &cobra.Command{
		Use:   "plan [goal]",
		Short: "Plan to a goal, resolving at most one unknown condition on demand",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !best && len(args) == 0 {
				return fmt.Errorf("goal name required (or use --best)")
			}
			forced, err := parseAssignments(assumptions)
			if err != nil {
				return err
			}
			goalName := ""
			if len(args) > 0 {
				goalName = args[0]
			}
			return runWithApp(cmd, func(ctx context.Context, a *App) error {
				return runPlan(ctx, a, cmd.OutOrStdout(), planRequest{
					Goal:   goalName,
					Best:   best,
					Assume: forced,
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&assumptions, "assume", nil, "force a condition for this run (condition=value), repeatable")
	cmd.Flags().BoolVar(&best, "best", false, "plan to whichever goal gives the best net value")
	return cmd
}

type planRequest struct {
	Goal   string
	Best   bool
	Assume map[goap.Condition]goap.Determination
}

// runPlan plans once and records the run in history.
func runPlan(ctx context.Context, a *App, w io.Writer, req planRequest) (err error) {
	ps := a.Domain.System()
	var goal goap.Goal
	if !req.Best {
		g, ok := ps.Goal(req.Goal)
		if !ok {
			return fmt.Errorf("unknown goal %q", req.Goal)
		}
		goal = g
	}

	run, err := a.Recorder.Start(ctx, history.KindPlan, req.Goal)
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

	p := a.Planner(worldstate.NewOverlay(a.Determiner, req.Assume))
	state, err := p.WorldState(ctx)
	if err != nil {
		return err
	}
	if err := run.Event(ctx, "world_state", state.String(), map[string]any{"unknown": state.UnknownConditions()}); err != nil {
		return err
	}

	var plan *goap.Plan
	if req.Best {
		plan, err = p.BestValuePlanToAnyGoal(ctx, ps)
	} else {
		plan, err = p.PlanToGoal(ctx, ps.Actions, goal)
	}
	if err != nil {
		return withStateHint(err)
	}

	if plan == nil {
		status, summary = history.StatusNoPlan, "no plan"
		if err := run.Event(ctx, "no_plan", "goal is unreachable", nil); err != nil {
			return err
		}
	} else {
		status, summary = history.StatusOK, plan.String()
		if err := run.Event(ctx, "plan", plan.String(), map[string]any{
			"goal":    plan.Goal.Name,
			"actions": plan.ActionNames(),
			"cost":    plan.Cost(),
		}); err != nil {
			return err
		}
	}
	fmt.Fprint(w, renderPlan(plan))
	fmt.Fprintln(w, mutedStyle.Render("run "+run.ID))
	return nil
}

// withStateHint tells the user how to settle extra unknown conditions.
func withStateHint(err error) error {
	var unsupported *planner.UnsupportedError
	if errors.As(err, &unsupported) {
		return fmt.Errorf("%w (store values with 'goap state set' or pass --assume)", err)
	}
	return err
}
