package main

import (
	"context"
	"fmt"

	"github.com/metalagman/goap/internal/db"
	"github.com/metalagman/goap/internal/history"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded planning runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(ctx context.Context, a *App) error {
				runs, err := a.Store.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					rows = append(rows, []string{r.RunID, r.CreatedAt, r.Kind, r.Goal, r.Status, r.Summary})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable("Runs", []string{"run", "created", "kind", "goal", "status", "summary"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most N runs (0 for all)")
	cmd.AddCommand(runsShowCmd())
	cmd.AddCommand(runsPruneCmd())
	return cmd
}

func runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the event timeline of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(ctx context.Context, a *App) error {
				status, err := a.Store.GetRunStatus(ctx, args[0])
				if err != nil {
					return err
				}
				if status == "" {
					return fmt.Errorf("run %s: %w", args[0], db.ErrRunNotFound)
				}
				events, err := a.Store.Events(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(events))
				for _, ev := range events {
					rows = append(rows, []string{fmt.Sprint(ev.Seq), ev.TS, ev.Type, ev.Message})
				}
				title := fmt.Sprintf("Run %s (%s)", args[0], status)
				fmt.Fprint(cmd.OutOrStdout(), renderTable(title, []string{"seq", "time", "type", "message"}, rows))
				return nil
			})
		},
	}
}

func runsPruneCmd() *cobra.Command {
	var keepLast int
	var keepDays int
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(ctx context.Context, a *App) error {
				policy := history.RetentionPolicy{KeepLast: keepLast, KeepDays: keepDays}
				if policy.KeepLast <= 0 && policy.KeepDays <= 0 {
					policy = history.RetentionPolicy{
						KeepLast: a.Config.Retention.KeepLast,
						KeepDays: a.Config.Retention.KeepDays,
					}
				}
				if policy.KeepLast <= 0 && policy.KeepDays <= 0 {
					return fmt.Errorf("set --keep-last or --keep-days (or configure retention in %s)", configPathFlag())
				}

				res, err := history.PruneRuns(ctx, a.Store, policy, dryRun)
				if err != nil {
					return err
				}
				mode := "deleted"
				if dryRun {
					mode = "would delete"
				}
				log.Info().Msgf("%s %d runs (kept %d of %d)", mode, res.Deleted, res.Kept, res.Considered)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d runs\n", mode, res.Deleted)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keepLast, "keep-last", 0, "keep the newest N runs")
	cmd.Flags().IntVar(&keepDays, "keep-days", 0, "keep runs newer than N days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be pruned without deleting")
	return cmd
}
