package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/lastmod/internal/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export [ref] [-- pathspec...]",
	Short: "Resolve and persist attributions into a sqlite database",
	Long: `Resolve attributions the same way the root command does and persist the
run into a sqlite database for downstream SQL analysis.

Examples:
  # Export everything at HEAD
  lastmod export --db owners.db

  # Export a branch, narrowed to a directory
  lastmod export --db owners.db release-2.4 -- src/`,
	Args: cobra.ArbitraryArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("db", "", "sqlite database file (default from config)")
	exportCmd.Flags().Bool("no-cache", false, "bypass the attribution cache")
	exportCmd.Flags().String("backend", "", "repository backend: git, native")
	exportCmd.Flags().Int("progress", 0, "log a progress marker every N commits (0 = off)")
	exportCmd.Flags().Int("max-commits", 0, "stop after reading N commits (0 = unbounded)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ref, filters, err := splitRefAndFilters(cmd, args)
	if err != nil {
		return err
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Export.Path
	}

	opts, err := pipelineOptions(cmd, ref, filters)
	if err != nil {
		return err
	}

	p, err := buildPipeline(ctx, cmd)
	if err != nil {
		return err
	}

	// An incomplete run is not worth persisting; export demands a full
	// attribution.
	result, err := p.Run(ctx, opts)
	if err != nil {
		return err
	}

	store, err := storage.New(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveRun(ctx, &result.Run, result.Attributions); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d attribution(s) at %s to %s (run %s)\n",
		len(result.Attributions), result.Run.CommitSHA[:8], dbPath, result.Run.ID)
	return nil
}
