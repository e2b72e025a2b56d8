package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/civicsignal/billfeed/internal/adapters/driven/config/file"
	"github.com/civicsignal/billfeed/internal/core/domain"
	"github.com/civicsignal/billfeed/internal/core/ports/driving"
)

// maxFailuresShown caps the failure list in the run summary. The full
// list is still available with --verbose during the run.
const maxFailuresShown = 10

var (
	ingestQuery         string
	ingestState         string
	ingestSince         string
	ingestLimit         int
	ingestMinRelevance  int
	ingestDryRun        bool
	ingestFull          bool
	ingestCheckExisting bool
	ingestStaleAfter    time.Duration
	ingestFloor         int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Search for new bills and store them",
	Long: `Runs one ingestion pass: searches the legislative API, filters the
results against bills already stored, fetches details for what is new
or updated, and writes them to the local database.

By default only bills that are absent or carry a newer status date are
fetched. Use --full to re-fetch everything the search returns, or
--check-existing to also revisit stale and low-relevance bills.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestQuery, "query", "q", "", "search query (defaults to the configured AI query)")
	ingestCmd.Flags().StringVarP(&ingestState, "state", "s", "", "restrict to one jurisdiction, e.g. CA")
	ingestCmd.Flags().StringVar(&ingestSince, "since", "", "drop results with a status date before this date (YYYY-MM-DD)")
	ingestCmd.Flags().IntVarP(&ingestLimit, "limit", "n", 0, "cap the number of bills fetched (0 = no cap)")
	ingestCmd.Flags().IntVar(&ingestMinRelevance, "min-relevance", 0, "drop results scoring below this relevance")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "stop after filtering, fetch and store nothing")
	ingestCmd.Flags().BoolVar(&ingestFull, "full", false, "re-fetch every search result")
	ingestCmd.Flags().BoolVar(&ingestCheckExisting, "check-existing", false, "also revisit stale and low-relevance bills")
	ingestCmd.Flags().DurationVar(&ingestStaleAfter, "stale-after", 7*24*time.Hour, "check-existing staleness window")
	ingestCmd.Flags().IntVar(&ingestFloor, "relevance-floor", 50, "check-existing relevance threshold")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestFull && ingestCheckExisting {
		return errors.New("--full and --check-existing are mutually exclusive")
	}

	if ingestOrchestrator == nil {
		if err := initIngest(); err != nil {
			return err
		}
	}

	opts, err := ingestOptions(cmd)
	if err != nil {
		return err
	}

	result, runErr := ingestOrchestrator.Ingest(context.Background(), opts)
	if result.State != domain.RunStateFailed {
		// A failed run has nothing to summarise; the error says it all.
		printRunSummary(cmd, result)
	}
	if runErr != nil {
		return fmt.Errorf("ingest failed: %w", runErr)
	}
	return nil
}

// ingestOptions assembles run options from flags, falling back to
// configured defaults for flags the user did not set.
func ingestOptions(cmd *cobra.Command) (driving.IngestOptions, error) {
	filter := domain.FilterOptions{
		Mode:         domain.ModeIncremental,
		MinRelevance: ingestMinRelevance,
		Jurisdiction: ingestState,
	}

	switch {
	case ingestFull:
		filter.Mode = domain.ModeFull
	case ingestCheckExisting:
		filter.Mode = domain.ModeCheckExisting
		filter.StaleAfter = ingestStaleAfter
		filter.RelevanceFloor = ingestFloor
	}

	if ingestSince != "" {
		since, err := time.Parse("2006-01-02", ingestSince)
		if err != nil {
			return driving.IngestOptions{}, fmt.Errorf("invalid --since date %q: expected YYYY-MM-DD", ingestSince)
		}
		filter.Since = since
	}

	if configStore != nil {
		settings := configfile.NewSettings(configStore)
		if !cmd.Flags().Changed("state") && ingestState == "" {
			filter.Jurisdiction = settings.Jurisdiction()
		}
		if !cmd.Flags().Changed("min-relevance") {
			filter.MinRelevance = settings.MinRelevance()
		}
	}

	return driving.IngestOptions{
		Query:  ingestQuery,
		Filter: filter,
		Limit:  ingestLimit,
		DryRun: ingestDryRun,
	}, nil
}

func printRunSummary(cmd *cobra.Command, result domain.RunResult) {
	cmd.Println()
	if result.DryRun {
		cmd.Println("Dry run: nothing fetched or stored.")
	}
	cmd.Printf("State:      %s\n", result.State)
	cmd.Printf("Searched:   %d\n", result.Searched)
	cmd.Printf("Candidates: %d\n", result.Candidates)
	if !result.DryRun {
		cmd.Printf("Stored:     %d\n", result.Stored)
		cmd.Printf("Updated:    %d\n", result.Updated)
		cmd.Printf("Skipped:    %d\n", result.Skipped)
	}
	cmd.Printf("API calls:  %d\n", result.CallsUsed)

	if len(result.Failures) == 0 {
		return
	}

	cmd.Printf("\n%d candidate(s) failed:\n", len(result.Failures))
	for i, f := range result.Failures {
		if i == maxFailuresShown {
			cmd.Printf("  ... and %d more\n", len(result.Failures)-maxFailuresShown)
			break
		}
		cmd.Printf("  bill %d (%s): %s\n", f.SourceID, f.Stage, f.Reason)
	}
}
