package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/metalagman/goap/internal/config"
	"github.com/metalagman/goap/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	debug   bool
	logJSON bool
	rootCmd = &cobra.Command{
		Use:           "goap",
		Short:         "goap is a goal-oriented action planner with lazy condition resolution",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("bind config flag: %w", err)
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Init(debug, logJSON)
		return loadDotEnv(".env")
	}
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(stateCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(pruneCmd())
	rootCmd.AddCommand(runsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadDotEnv loads path into the environment when it exists.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func configPathFlag() string {
	path := viper.GetString("config")
	if path == "" {
		path = config.DefaultPath
	}
	return path
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
