// Package cli implements the billfeed command line interface using
// cobra. Commands hold package-level references to the core services
// they drive; wiring happens lazily on first use so that commands
// which need no API key (version, config) work without one.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/civicsignal/billfeed/internal/core/ports/driven"
	"github.com/civicsignal/billfeed/internal/core/ports/driving"
	"github.com/civicsignal/billfeed/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0-dev"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "billfeed",
	Short: "Track AI-related legislation across state legislatures",
	Long: `billfeed searches legislative APIs for bills touching AI and
automated decision-making, diffs the results against its local
database, and ingests whatever is new or has a newer version.

Downstream consumers are notified of stored bills through a Redis
queue when one is configured.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

// Services driven by the commands. Wired by initServices, replaced by
// tests.
var (
	ingestOrchestrator driving.IngestOrchestrator
	configStore        driven.ConfigStore
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetIngestOrchestrator injects the ingestion service.
func SetIngestOrchestrator(o driving.IngestOrchestrator) {
	ingestOrchestrator = o
}

// SetConfigStore injects the configuration store.
func SetConfigStore(s driven.ConfigStore) {
	configStore = s
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
