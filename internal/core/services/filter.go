package services

import (
	"time"

	"github.com/civicsignal/billfeed/internal/core/domain"
)

// FilterCandidates computes the subset of remote search results worth
// a detail fetch, given what the store already holds per lineage.
//
// The function is pure and deterministic: for fixed inputs the output
// is a fixed subset preserving the input ordering. The restriction
// predicates (relevance, jurisdiction, date) compose conjunctively
// with the mode's lineage check and are order-independent.
func FilterCandidates(
	results []domain.RemoteSummary,
	existing map[domain.LineageKey]domain.LineageState,
	opts domain.FilterOptions,
) []domain.RemoteSummary {
	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeIncremental
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	candidates := make([]domain.RemoteSummary, 0, len(results))
	for _, r := range results {
		if !passesRestrictions(r, opts) {
			continue
		}

		if mode == domain.ModeFull {
			candidates = append(candidates, r)
			continue
		}

		state, known := existing[r.Lineage()]
		switch {
		case !known:
			candidates = append(candidates, r)
		case isNewer(r, state):
			candidates = append(candidates, r)
		case mode == domain.ModeCheckExisting && isStale(state, opts, now):
			candidates = append(candidates, r)
		}
	}

	return candidates
}

// passesRestrictions applies the caller's conjunctive predicates.
func passesRestrictions(r domain.RemoteSummary, opts domain.FilterOptions) bool {
	if r.Relevance < opts.MinRelevance {
		return false
	}
	if opts.Jurisdiction != "" && opts.Jurisdiction != domain.JurisdictionAll &&
		r.Jurisdiction != opts.Jurisdiction {
		return false
	}
	// Hits without a status date pass; the post-fetch version date
	// check covers them.
	if !opts.Since.IsZero() && !r.StatusDate.IsZero() && r.StatusDate.Before(opts.Since) {
		return false
	}
	return true
}

// isNewer reports whether the hit's status date is strictly newer than
// the stored version date for its lineage. Hits without a status date
// are not considered newer; full detail is only fetched for them when
// the lineage itself is unknown.
func isNewer(r domain.RemoteSummary, state domain.LineageState) bool {
	return !r.StatusDate.IsZero() && r.StatusDate.After(state.VersionDate)
}

// isStale applies the check-existing predicates: a stored lineage
// becomes a candidate again when its relevance fell below the floor or
// its last check is older than the staleness window.
func isStale(state domain.LineageState, opts domain.FilterOptions, now time.Time) bool {
	if opts.RelevanceFloor > 0 && state.RelevanceScore < opts.RelevanceFloor {
		return true
	}
	if opts.StaleAfter > 0 {
		if state.LastCheckedAt.IsZero() {
			return true
		}
		if now.Sub(state.LastCheckedAt) > opts.StaleAfter {
			return true
		}
	}
	return false
}
