package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/semplan/internal/logging"
)

var (
	configPath string
	dbPath     string
	verbose    bool

	planOut     string
	planFormat  string
	planTimeout time.Duration
	planSeeds   []string
	planDryRun  bool

	serveAddr    string
	historyLimit int

	prunePlans       time.Duration
	pruneSuggestions time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "semplan",
	Short: "semplan - keyword research and search campaign planning",
	Long: `semplan gathers keyword candidates from autocomplete, your website,
competitor pages, industry templates and seed expansions, then turns them
into a campaign plan: intent, performance score, recommended bid and a
Search / Shopping / Performance Max structure within your budget.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Research keywords and build a campaign plan",
	Long: `Runs every enabled keyword source, plans the campaigns and stores the
result. The plan is written to --out (or stdout) and a summary to stderr.

Example:
  semplan plan --config acme.yaml --out plan.json
  semplan plan --config acme.yaml --format csv --out keywords.csv`,
	RunE: runPlan,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planning API over HTTP",
	RunE:  runServe,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored plans, newest first",
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show [plan-id]",
	Short: "Print the summary of a stored plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old plans and expired autocomplete cache entries",
	Long: `Removes stored plans older than --plans and cached suggestions older
than --suggestions. A zero duration keeps that kind of record.

Example:
  semplan prune --plans 2160h --suggestions 24h`,
	RunE: runPrune,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "semplan.yaml", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "semplan.db", "SQLite database for plans and the suggestion cache")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "Write the plan here instead of stdout")
	planCmd.Flags().StringVar(&planFormat, "format", "json", "Output format: json or csv")
	planCmd.Flags().DurationVar(&planTimeout, "timeout", 0, "Keyword research timeout (default from config)")
	planCmd.Flags().StringSliceVar(&planSeeds, "seed", nil, "Extra seed keyword (repeatable)")
	planCmd.Flags().BoolVar(&planDryRun, "dry-run", false, "Do not store the plan")

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of plans to list")

	pruneCmd.Flags().DurationVar(&prunePlans, "plans", 0, "Keep plans this long (0 keeps all)")
	pruneCmd.Flags().DurationVar(&pruneSuggestions, "suggestions", 24*time.Hour, "Keep cached suggestions this long (0 keeps all)")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(pruneCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
