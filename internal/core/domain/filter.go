package domain

import "time"

// FilterMode selects the diff filter's novelty policy.
type FilterMode string

const (
	// ModeIncremental selects only lineages that are absent from the
	// store or report a strictly newer status date. The default.
	ModeIncremental FilterMode = "incremental"

	// ModeFull bypasses the lineage check entirely: every search
	// result is a candidate. Used to force re-ingestion after a schema
	// change or suspected data loss, at full quota cost.
	ModeFull FilterMode = "full"

	// ModeCheckExisting extends incremental to also re-fetch lineages
	// whose stored relevance is low or whose last check is stale, to
	// catch metadata updates the status date does not reflect.
	ModeCheckExisting FilterMode = "check-existing"
)

// FilterOptions configures one diff filter evaluation. The zero value
// is an unrestricted incremental filter.
type FilterOptions struct {
	// Mode is the novelty policy. Empty means ModeIncremental.
	Mode FilterMode

	// MinRelevance drops results scoring below this threshold.
	MinRelevance int

	// Jurisdiction restricts results to one region code.
	// Empty or JurisdictionAll means no restriction.
	Jurisdiction string

	// Since drops results whose status date is before this date.
	// Results without a status date are kept; the post-fetch version
	// date check covers them.
	Since time.Time

	// StaleAfter is the check-existing staleness window: lineages not
	// re-examined within it become candidates again. Zero disables the
	// staleness predicate.
	StaleAfter time.Duration

	// RelevanceFloor is the check-existing score threshold: lineages
	// stored with a lower relevance become candidates again.
	RelevanceFloor int

	// Now anchors the staleness predicate. Zero means time.Now.
	Now time.Time
}
