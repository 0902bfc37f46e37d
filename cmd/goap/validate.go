package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config and the action catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(_ context.Context, a *App) error {
				ps := a.Domain.System()
				fmt.Fprintf(cmd.OutOrStdout(), "config and domain are valid: %d conditions, %d actions, %d goals, %d probes\n",
					len(a.Domain.ConditionNames()), len(ps.Actions), len(ps.Goals), len(a.Probes.Names()))
				return nil
			})
		},
	}
}
