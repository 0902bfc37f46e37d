package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/metalagman/goap/internal/config"
	"github.com/metalagman/goap/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new goap project",
		Long:  "Initialize a new goap project by creating the .goap directory with a default config and a sample action catalogue.",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			if err := initProject(root); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "goap initialized successfully")
			return nil
		},
	}
}

// initProject writes the default config and sample domain under root,
// leaving existing files untouched.
func initProject(root string) error {
	dir := filepath.Join(root, config.Dir)
	log.Info().Str("dir", dir).Msg("creating goap directory")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create goap dir: %w", err)
	}
	files := []struct {
		path string
		data []byte
	}{
		{path: filepath.Join(root, config.DefaultPath), data: config.DefaultYAML},
		{path: filepath.Join(dir, "domain.yaml"), data: domain.Sample},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			log.Info().Str("path", f.path).Msg("file already exists, skipping")
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", f.path, err)
		}
		log.Info().Str("path", f.path).Msg("writing file")
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return nil
}
