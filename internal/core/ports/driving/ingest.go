package driving

import (
	"context"

	"github.com/civicsignal/billfeed/internal/core/domain"
)

// IngestOrchestrator runs the search -> filter -> fetch -> parse ->
// store pipeline against the remote legislative API.
type IngestOrchestrator interface {
	// Ingest performs one run. The returned error is non-nil only for
	// run-fatal failures (search stage, unreachable store); per-item
	// failures are reported inside the RunResult.
	Ingest(ctx context.Context, opts IngestOptions) (domain.RunResult, error)
}

// IngestOptions configures one ingestion run.
type IngestOptions struct {
	// Query is the search expression. Empty selects the configured
	// default query.
	Query string

	// Filter carries the diff filter mode and restrictions.
	Filter domain.FilterOptions

	// Limit caps the number of candidates fetched after filtering.
	// Zero means no cap.
	Limit int

	// DryRun stops the run after filtering: candidate counts are
	// reported, but no detail fetches and no store writes happen.
	DryRun bool
}
