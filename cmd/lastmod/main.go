package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/lastmod/internal/config"
	"github.com/rohankatakam/lastmod/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	repoDir string
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lastmod [ref] [-- pathspec...]",
	Short: "lastmod - find the commit that last touched every file in a tree",
	Long: `lastmod resolves, for every tracked file at a reference, the most recent
commit that touched it - in one shared pass over the commit log instead of
one git log invocation per file.

Examples:
  # Everything at HEAD
  lastmod

  # A branch, narrowed to a directory
  lastmod release-2.4 -- src/parser

  # Machine output
  lastmod --format=json > owners.json`,
	Version: Version,
	Args:    cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(verbose)

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}
	},
	RunE: runResolve,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .lastmod/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "run against another working tree")

	rootCmd.Flags().String("format", "", "output format: table, json, csv, yaml")
	rootCmd.Flags().Bool("no-color", false, "disable styled output")
	rootCmd.Flags().Bool("no-cache", false, "bypass the attribution cache")
	rootCmd.Flags().String("backend", "", "repository backend: git, native")
	rootCmd.Flags().Int("progress", 0, "log a progress marker every N commits (0 = off)")
	rootCmd.Flags().Int("max-commits", 0, "stop after reading N commits (0 = unbounded)")

	// Set custom version template
	rootCmd.SetVersionTemplate(`lastmod {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(cacheCmd)
}

// splitRefAndFilters separates the optional ref from the pathspec filters
// behind the -- marker, the way git itself reads its arguments.
func splitRefAndFilters(cmd *cobra.Command, args []string) (string, []string, error) {
	ref := "HEAD"
	var filters []string

	dash := cmd.ArgsLenAtDash()
	refArgs := args
	if dash >= 0 {
		refArgs = args[:dash]
		filters = args[dash:]
	}

	switch len(refArgs) {
	case 0:
	case 1:
		ref = refArgs[0]
	default:
		return "", nil, fmt.Errorf("at most one ref may be given, got %d (use -- before pathspec filters)", len(refArgs))
	}

	return ref, filters, nil
}
