package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/lastmod/internal/cache"
	"github.com/rohankatakam/lastmod/internal/errors"
	"github.com/rohankatakam/lastmod/internal/gitrun"
	"github.com/rohankatakam/lastmod/internal/output"
	"github.com/rohankatakam/lastmod/internal/pipeline"
)

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ref, filters, err := splitRefAndFilters(cmd, args)
	if err != nil {
		return err
	}

	opts, err := pipelineOptions(cmd, ref, filters)
	if err != nil {
		return err
	}

	p, err := buildPipeline(ctx, cmd)
	if err != nil {
		return err
	}

	result, runErr := p.Run(ctx, opts)

	// Partial output still prints; the unresolved leftovers then fail the
	// run loudly on stderr.
	if result != nil {
		presenter, perr := buildPresenter(cmd)
		if perr != nil {
			return perr
		}
		report := &output.Report{
			Ref:          result.Run.Ref,
			Commit:       result.Run.CommitSHA,
			Attributions: result.Attributions,
			Unresolved:   result.Unresolved,
		}
		if err := presenter.Print(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if runErr != nil && errors.IsIncompleteResolution(runErr) {
			presenter.PrintUnresolved(cmd.ErrOrStderr(), result.Unresolved)
		}
	}

	return runErr
}

// pipelineOptions merges config defaults with the command's flags.
func pipelineOptions(cmd *cobra.Command, ref string, filters []string) (pipeline.Options, error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	progress, _ := cmd.Flags().GetInt("progress")
	maxCommits, _ := cmd.Flags().GetInt("max-commits")

	if !cmd.Flags().Changed("progress") {
		progress = cfg.Progress
	}
	if !cmd.Flags().Changed("max-commits") {
		maxCommits = cfg.MaxCommits
	}

	return pipeline.Options{
		Ref:        ref,
		Filters:    filters,
		Backend:    backendName(cmd),
		NoCache:    noCache || !cfg.Cache.Enabled,
		Progress:   progress,
		MaxCommits: maxCommits,
	}, nil
}

// backendName picks the repository backend: the flag wins over config, and
// a missing git binary forces the native backend.
func backendName(cmd *cobra.Command) string {
	name := cfg.Backend
	if flag, _ := cmd.Flags().GetString("backend"); flag != "" {
		name = flag
	}

	if name == "git" && !gitrun.Available() {
		logger.Debug("git binary not found, falling back to the native backend")
		return "native"
	}
	return name
}

func buildPipeline(ctx context.Context, cmd *cobra.Command) (*pipeline.Pipeline, error) {
	name := backendName(cmd)

	var backend pipeline.Backend
	var gitDir, repoRoot string

	switch name {
	case "native":
		native, err := pipeline.NewNativeBackend(repoDir)
		if err != nil {
			return nil, err
		}
		backend = native
		repoRoot = repoDir
	case "git":
		runner := gitrun.New(repoDir)
		root, err := runner.RepoRoot(ctx)
		if err != nil {
			return nil, err
		}
		if dir, err := runner.GitDir(ctx); err == nil {
			gitDir = dir
		}
		backend = pipeline.NewExecBackend(root)
		repoRoot = root
	default:
		return nil, fmt.Errorf("invalid backend %q, must be: git or native", name)
	}

	var cacheManager *cache.Manager
	if cfg.Cache.Enabled {
		path := cfg.Cache.Path
		if path == "" {
			path = cache.DefaultPath(gitDir, repoRoot)
		}
		cacheManager = cache.NewManager(path, logger)
	}

	return pipeline.New(backend, cacheManager, logger), nil
}

func buildPresenter(cmd *cobra.Command) (*output.Presenter, error) {
	format := cfg.Format
	if flag, _ := cmd.Flags().GetString("format"); flag != "" {
		format = flag
	}
	switch format {
	case "table", "json", "csv", "yaml":
	default:
		return nil, fmt.Errorf("invalid format %q, must be: table, json, csv, or yaml", format)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	color := false
	switch cfg.Color {
	case "always":
		color = !noColor
	case "never":
	default: // auto
		color = output.ColorEnabled(os.Stdout, noColor)
	}

	return output.NewPresenter(format, color), nil
}
