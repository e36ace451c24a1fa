// Package cli wires the command-line interface. Each command builds its own
// service graph from the loaded configuration, runs, and tears it down.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/doclens/doclens-cli/internal/logger"
)

var (
	version = "dev"

	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "doclens",
	Short: "Category-aware semantic search over a local document corpus",
	Long: `Doclens answers free-text questions from a locally indexed document corpus.

Queries are routed to category groups by keyword, searched within the routed
categories first, and fall back to a general index search when the scoped
results are not confident enough.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.doclens/config.toml)")
}

// Execute runs the root command with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
