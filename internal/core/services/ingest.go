package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicsignal/billfeed/internal/core/domain"
	"github.com/civicsignal/billfeed/internal/core/ports/driven"
	"github.com/civicsignal/billfeed/internal/core/ports/driving"
	"github.com/civicsignal/billfeed/internal/logger"
)

// Ensure IngestionOrchestrator implements the interface.
var _ driving.IngestOrchestrator = (*IngestionOrchestrator)(nil)

// dryRunPreview is how many candidates a dry run prints in detail.
const dryRunPreview = 5

// IngestionOrchestrator sequences one ingestion run: search once,
// diff against the store, fetch detail for the candidates, map, and
// upsert. API calls are issued strictly sequentially - the client's
// minimum inter-call spacing makes concurrent issuance pointless.
//
// Per-candidate failures are accumulated, never thrown: a single bad
// record cannot abort the run. Only a failure at or before the search
// call is fatal.
type IngestionOrchestrator struct {
	client   driven.SearchClient
	store    driven.BillStore
	notifier driven.Notifier

	// defaultQuery is used when the caller passes no query.
	defaultQuery string
}

// NewIngestionOrchestrator creates an orchestrator. notifier is
// optional - when nil, no downstream notifications are emitted.
func NewIngestionOrchestrator(
	client driven.SearchClient,
	store driven.BillStore,
	notifier driven.Notifier,
	defaultQuery string,
) *IngestionOrchestrator {
	return &IngestionOrchestrator{
		client:       client,
		store:        store,
		notifier:     notifier,
		defaultQuery: defaultQuery,
	}
}

// Ingest performs one run. The returned RunResult is populated even
// when the error is non-nil, so callers can report whatever progress
// was made.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *IngestionOrchestrator) Ingest(ctx context.Context, opts driving.IngestOptions) (domain.RunResult, error) {
	result := domain.RunResult{State: domain.RunStateInit, DryRun: opts.DryRun}

	if o.client == nil || o.store == nil {
		return result.Fail(), errors.New("ingest: client and store must be configured")
	}

	query := opts.Query
	if query == "" {
		query = o.defaultQuery
	}
	mode := opts.Filter.Mode
	if mode == "" {
		mode = domain.ModeIncremental
	}

	// 1. Search: one call. Any failure here aborts the whole run -
	// there is nothing partial to salvage.
	logger.Section("Search")
	results, meta, err := o.client.Search(ctx, query, opts.Filter.Jurisdiction)
	if err != nil {
		result.CallsUsed = o.client.Calls()
		return result.Fail(), fmt.Errorf("search: %w", err)
	}
	result.State = domain.RunStateSearched
	result.Searched = len(results)
	logger.Info("Search matched %d results (%d declared by API)", len(results), meta.TotalCount)

	// 2. Filter against the store's current lineage snapshot. Full
	// mode never consults it.
	logger.Section("Filter")
	var existing map[domain.LineageKey]domain.LineageState
	if mode != domain.ModeFull {
		existing, err = o.store.ExistingKeys(ctx, opts.Filter.Jurisdiction)
		if err != nil {
			result.CallsUsed = o.client.Calls()
			return result.Fail(), fmt.Errorf("%w: existing keys: %w", domain.ErrStorageFailed, err)
		}
		logger.Info("Store knows %d lineages", len(existing))

		if last, ok, err := o.store.LastRunTimestamp(ctx); err == nil && ok {
			logger.Info("Last ingestion run: %s", last.Format(time.RFC3339))
		}
	}

	candidates := FilterCandidates(results, existing, opts.Filter)
	result.State = domain.RunStateFiltered
	result.Candidates = len(candidates)
	logger.Info("Filtered %d results to %d candidates (%s mode)", len(results), len(candidates), mode)

	// Dry run stops here: no further API calls, no writes.
	if opts.DryRun {
		o.previewCandidates(candidates)
		result.State = domain.RunStateDone
		result.CallsUsed = o.client.Calls()
		return result, nil
	}

	if opts.Limit > 0 && len(candidates) > opts.Limit {
		logger.Info("Limiting to first %d candidates", opts.Limit)
		candidates = candidates[:opts.Limit]
	}

	// Incremental runs skip detail fetches for source IDs already
	// stored; their quota cost buys nothing new. Check-existing wants
	// the re-fetch, so it opts out.
	var alreadyStored map[int]bool
	if mode == domain.ModeIncremental {
		alreadyStored = o.storedSourceIDs(ctx, candidates)
	}

	// 3. Fetch, parse, store - each candidate independently
	// recoverable. Failures are accumulated, not thrown.
	logger.Section("Fetch and store")
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			result.CallsUsed = o.client.Calls()
			return result.Finish(), err
		}

		if alreadyStored[candidate.SourceID] {
			logger.Debug("Skipping bill %d (%d/%d): already stored", candidate.SourceID, i+1, len(candidates))
			result.Skipped++
			continue
		}

		logger.Debug("Fetching bill %d (%d/%d), relevance %d",
			candidate.SourceID, i+1, len(candidates), candidate.Relevance)

		bill, err := o.client.FetchDetail(ctx, candidate.SourceID, candidate.Relevance)
		if err != nil {
			if errors.Is(err, domain.ErrAuthFailed) {
				// A revoked key mid-run cannot recover; stop burning
				// quota on the remaining candidates.
				result.CallsUsed = o.client.Calls()
				return result.Finish(), fmt.Errorf("fetch bill %d: %w", candidate.SourceID, err)
			}
			logger.Error("Bill %d failed at %s stage: %v", candidate.SourceID, stageFor(err), err)
			result.Skip(candidate.SourceID, stageFor(err), err)
			continue
		}
		result.State = domain.RunStateFetched

		// The search step cannot filter by date; enforce the caller's
		// window on the authoritative post-fetch version date.
		if !opts.Filter.Since.IsZero() && bill.VersionDate.Before(opts.Filter.Since) {
			logger.Debug("Skipping %s: version date %s before %s",
				bill.ExternalID, bill.VersionDate.Format("2006-01-02"),
				opts.Filter.Since.Format("2006-01-02"))
			result.Skipped++
			continue
		}
		result.State = domain.RunStateParsed

		outcome, err := o.store.Upsert(ctx, bill)
		if err != nil {
			logger.Error("Bill %d failed at store stage: %v", candidate.SourceID, err)
			result.Skip(candidate.SourceID, domain.StageStore, err)
			continue
		}
		result.State = domain.RunStateStored

		switch outcome {
		case driven.UpsertInserted:
			result.Stored++
			o.notifyStored(ctx, bill)
		case driven.UpsertUpdated:
			result.Updated++
			if err := o.store.Touch(ctx, bill.Lineage(), time.Now()); err != nil {
				logger.Warn("Could not record re-check for %s: %v", bill.Lineage(), err)
			}
		}
	}

	result.CallsUsed = o.client.Calls()
	logger.Info("Run complete: %d stored, %d updated, %d skipped, %d failures (%d API calls)",
		result.Stored, result.Updated, result.Skipped, len(result.Failures), result.CallsUsed)

	return result.Finish(), nil
}

// storedSourceIDs bulk-checks which candidate source IDs are already
// in the store. Lookup failures degrade to fetching everything.
func (o *IngestionOrchestrator) storedSourceIDs(ctx context.Context, candidates []domain.RemoteSummary) map[int]bool {
	ids := make([]int, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.SourceID)
	}
	if len(ids) == 0 {
		return nil
	}

	stored, err := o.store.ExistingSourceIDs(ctx, ids)
	if err != nil {
		logger.Warn("Could not bulk-check stored source IDs: %v", err)
		return nil
	}
	if len(stored) > 0 {
		logger.Info("Skipping detail fetch for %d already-stored bills", len(stored))
	}
	return stored
}

// notifyStored hands one newly inserted bill to the downstream queue.
// Notification failures are logged, not counted: the bill is stored
// and a later check-existing run will not re-insert it.
func (o *IngestionOrchestrator) notifyStored(ctx context.Context, bill domain.Bill) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.BillStored(ctx, bill); err != nil {
		logger.Warn("Downstream notification failed for %s: %v", bill.ExternalID, err)
	}
}

// previewCandidates logs the first few candidates of a dry run.
func (o *IngestionOrchestrator) previewCandidates(candidates []domain.RemoteSummary) {
	n := len(candidates)
	logger.Info("DRY RUN: would fetch %d candidates, no writes performed", n)
	for i, c := range candidates {
		if i == dryRunPreview {
			logger.Info("  ... and %d more", n-dryRunPreview)
			break
		}
		logger.Info("  would fetch: %s (bill %d, relevance %d)", c.Lineage(), c.SourceID, c.Relevance)
	}
}

// stageFor classifies a fetch-path error into the pipeline stage it
// belongs to. Mapping failures surface from the client's fetch call
// but are parse-stage failures.
func stageFor(err error) domain.Stage {
	if errors.Is(err, domain.ErrMappingFailed) {
		return domain.StageParse
	}
	return domain.StageFetch
}
