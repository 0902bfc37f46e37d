package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/metalagman/goap/internal/goap"
	"github.com/spf13/cobra"
)

func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the cheap world state snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(ctx context.Context, a *App) error {
				out, err := renderState(ctx, a)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.AddCommand(stateSetCmd())
	cmd.AddCommand(stateUnsetCmd())
	return cmd
}

func renderState(ctx context.Context, a *App) (string, error) {
	state, err := a.Determiner.DetermineWorldState(ctx)
	if err != nil {
		return "", err
	}
	facts, err := a.Store.Facts(ctx)
	if err != nil {
		return "", err
	}
	sources := make(map[goap.Condition]string, len(facts))
	for _, f := range facts {
		sources[f.Condition] = f.Source
	}
	rows := make([][]string, 0, state.Len())
	for _, c := range state.Conditions() {
		probeName, _ := a.Domain.ProbeFor(c)
		rows = append(rows, []string{string(c), renderDetermination(state.Get(c)), sources[c], probeName})
	}
	return renderTable("World state", []string{"condition", "value", "source", "probe"}, rows), nil
}

func stateSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set condition=value...",
		Short: "Store determinations for conditions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := parseAssignments(args)
			if err != nil {
				return err
			}
			return runWithApp(cmd, func(ctx context.Context, a *App) error {
				for _, c := range sortedConditions(assignments) {
					d := assignments[c]
					if !d.Known() {
						if err := a.Store.DeleteFact(ctx, c); err != nil {
							return err
						}
						continue
					}
					if err := a.Store.SetFact(ctx, c, d, "manual"); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %d conditions\n", len(assignments))
				return nil
			})
		},
	}
}

func stateUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset condition...",
		Short: "Forget stored determinations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(ctx context.Context, a *App) error {
				for _, c := range args {
					if err := a.Store.DeleteFact(ctx, goap.Condition(strings.TrimSpace(c))); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "forgot %d conditions\n", len(args))
				return nil
			})
		},
	}
}

// parseAssignments parses "condition=value" pairs.
func parseAssignments(args []string) (map[goap.Condition]goap.Determination, error) {
	out := make(map[goap.Condition]goap.Determination, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: want condition=value", arg)
		}
		d, err := goap.ParseDetermination(value)
		if err != nil {
			return nil, fmt.Errorf("invalid assignment %q: %w", arg, err)
		}
		out[goap.Condition(name)] = d
	}
	return out, nil
}

func sortedConditions(m map[goap.Condition]goap.Determination) []goap.Condition {
	return goap.NewWorldState(m).Conditions()
}
