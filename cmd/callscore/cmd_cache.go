package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the scoring result cache",
		Long: `Manage the scoring result cache.

The cache stores scoring results to speed up repeated batch runs over the same
attempts. Entries are keyed by the transcript, call duration, persona and
rubric of an attempt together with the engine settings.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the scoring result cache",
		Long: `Clear all cached scoring results.

The next batch run will score every attempt from scratch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cacheDir == "" {
				cfg, err := loadProjectConfig()
				if err != nil {
					return err
				}
				cacheDir = cfg.Cache.Dir
			}

			c, err := openCache(cacheDir)
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", c.Dir()) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory to clear (default from config)")

	return cmd
}
