package driven

import (
	"context"
	"time"

	"github.com/civicsignal/billfeed/internal/core/domain"
)

// UpsertOutcome reports what an Upsert call did.
type UpsertOutcome string

const (
	// UpsertInserted means a new record was created.
	UpsertInserted UpsertOutcome = "inserted"

	// UpsertUpdated means an existing record was rewritten in place.
	UpsertUpdated UpsertOutcome = "updated"
)

// BillStore is the persistence port for bills. The orchestrator
// depends on it for the existing-keys snapshot that drives
// deduplication and for the idempotent upsert keyed on external_id.
type BillStore interface {
	// ExistingKeys returns the newest known state per lineage.
	// jurisdiction narrows the snapshot; domain.JurisdictionAll or ""
	// returns every lineage.
	ExistingKeys(ctx context.Context, jurisdiction string) (map[domain.LineageKey]domain.LineageState, error)

	// ExistingSourceIDs reports which of the given remote source IDs
	// are already stored, so incremental runs can skip their detail
	// fetches entirely.
	ExistingSourceIDs(ctx context.Context, sourceIDs []int) (map[int]bool, error)

	// LastRunTimestamp returns when a bill was last written, or ok
	// false when the store is empty.
	LastRunTimestamp(ctx context.Context) (t time.Time, ok bool, err error)

	// Upsert writes a bill keyed on ExternalID. Re-upserting an
	// identical bill is a no-op update, preserving run idempotence.
	Upsert(ctx context.Context, bill domain.Bill) (UpsertOutcome, error)

	// Touch records that an ingestion run re-examined a lineage
	// without finding a new version.
	Touch(ctx context.Context, key domain.LineageKey, at time.Time) error
}
