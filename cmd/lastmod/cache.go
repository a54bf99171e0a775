package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/lastmod/internal/cache"
	"github.com/rohankatakam/lastmod/internal/gitrun"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the attribution cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache location, size and entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := cacheManager(context.Background())
		if err != nil {
			return err
		}

		info, err := manager.Status()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cache: %s\n", info.Path)
		fmt.Fprintf(cmd.OutOrStdout(), "Size: %d bytes\n", info.Size)
		fmt.Fprintf(cmd.OutOrStdout(), "Commits: %d\n", info.Commits)
		fmt.Fprintf(cmd.OutOrStdout(), "Entries: %d\n", info.Entries)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cache file",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := cacheManager(context.Background())
		if err != nil {
			return err
		}

		if err := manager.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", manager.Path())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// cacheManager locates the cache for the current repository, preferring the
// configured path.
func cacheManager(ctx context.Context) (*cache.Manager, error) {
	path := cfg.Cache.Path
	if path == "" {
		var gitDir, root string
		if gitrun.Available() {
			runner := gitrun.New(repoDir)
			if r, err := runner.RepoRoot(ctx); err == nil {
				root = r
			} else {
				root = repoDir
			}
			if dir, err := runner.GitDir(ctx); err == nil {
				gitDir = dir
			}
		} else {
			root = repoDir
		}
		path = cache.DefaultPath(gitDir, root)
	}
	return cache.NewManager(path, logger), nil
}
