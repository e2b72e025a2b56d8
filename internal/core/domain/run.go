package domain

// RunState is the ingestion state machine position. States advance
// strictly forward within a run; there are no cycles.
type RunState string

const (
	RunStateInit     RunState = "init"
	RunStateSearched RunState = "searched"
	RunStateFiltered RunState = "filtered"
	RunStateFetched  RunState = "fetched"
	RunStateParsed   RunState = "parsed"
	RunStateStored   RunState = "stored"
	RunStateDone     RunState = "done"

	// RunStateFailed is terminal and reachable only from Init or
	// Searched: a failure at or before the single search call aborts
	// the whole run.
	RunStateFailed RunState = "failed"

	// RunStatePartial marks a run that finished with per-item failures.
	RunStatePartial RunState = "partially_completed"
)

// Stage names the pipeline step where a per-item failure occurred.
type Stage string

const (
	StageFetch Stage = "fetch"
	StageParse Stage = "parse"
	StageStore Stage = "store"
)

// ItemFailure records one skipped candidate and why.
type ItemFailure struct {
	// SourceID identifies the candidate that failed.
	SourceID int

	// Stage is the pipeline step that failed.
	Stage Stage

	// Reason is the error text.
	Reason string
}

// RunResult is the aggregated outcome of one ingestion run. A run is
// successful in the exit-code sense whenever it reaches Stored/Done,
// even with nonzero Skipped or Failures; only a Search-stage failure
// is fatal to the whole run.
type RunResult struct {
	// State is the final state machine position.
	State RunState

	// Searched is the number of remote search results.
	Searched int

	// Candidates is the number of results selected by the diff filter.
	Candidates int

	// Stored is the number of newly inserted records.
	Stored int

	// Updated is the number of existing records rewritten in place.
	Updated int

	// Skipped is the number of candidates passed over without a store
	// write (already present, filtered post-fetch, or failed).
	Skipped int

	// CallsUsed is the client's cumulative API call count at run end.
	CallsUsed int

	// DryRun reports whether the run stopped after filtering.
	DryRun bool

	// Failures lists per-item failures in candidate order.
	Failures []ItemFailure
}

// Partial reports whether the run completed with per-item failures.
func (r RunResult) Partial() bool {
	return len(r.Failures) > 0
}

// Skip records one skipped candidate with the failure that caused it.
func (r *RunResult) Skip(sourceID int, stage Stage, err error) {
	r.Skipped++
	r.Failures = append(r.Failures, ItemFailure{
		SourceID: sourceID,
		Stage:    stage,
		Reason:   err.Error(),
	})
}

// Fail returns the result marked with the terminal Failed state.
func (r RunResult) Fail() RunResult {
	r.State = RunStateFailed
	return r
}

// Finish returns the result with its final state: Done when every
// candidate went through cleanly, PartiallyCompleted otherwise.
func (r RunResult) Finish() RunResult {
	if r.Partial() {
		r.State = RunStatePartial
	} else {
		r.State = RunStateDone
	}
	return r
}
