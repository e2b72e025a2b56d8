// Package memory provides in-memory implementations of the storage
// ports, used in tests and for throwaway runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicsignal/billfeed/internal/core/domain"
	"github.com/civicsignal/billfeed/internal/core/ports/driven"
)

// Ensure BillStore implements the interface.
var _ driven.BillStore = (*BillStore)(nil)

// BillStore is an in-memory implementation of driven.BillStore.
type BillStore struct {
	mu    sync.RWMutex
	bills map[string]domain.Bill // keyed by ExternalID
}

// NewBillStore creates a new in-memory bill store.
func NewBillStore() *BillStore {
	return &BillStore{
		bills: make(map[string]domain.Bill),
	}
}

// ExistingKeys returns the newest known state per lineage.
func (s *BillStore) ExistingKeys(_ context.Context, jurisdiction string) (map[domain.LineageKey]domain.LineageState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make(map[domain.LineageKey]domain.LineageState)
	for _, bill := range s.bills {
		if jurisdiction != "" && jurisdiction != domain.JurisdictionAll &&
			bill.Jurisdiction != jurisdiction {
			continue
		}
		key := bill.Lineage()
		state, ok := keys[key]
		if !ok || bill.VersionDate.After(state.VersionDate) {
			keys[key] = domain.LineageState{
				VersionDate:    bill.VersionDate,
				RelevanceScore: bill.RelevanceScore,
				LastCheckedAt:  bill.LastCheckedAt,
			}
		}
	}
	return keys, nil
}

// ExistingSourceIDs reports which of the given source IDs are stored.
func (s *BillStore) ExistingSourceIDs(_ context.Context, sourceIDs []int) (map[int]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := make(map[int]bool)
	for _, bill := range s.bills {
		stored[bill.SourceID] = true
	}

	result := make(map[int]bool)
	for _, id := range sourceIDs {
		if stored[id] {
			result[id] = true
		}
	}
	return result, nil
}

// LastRunTimestamp returns the newest UpdatedAt across all bills.
func (s *BillStore) LastRunTimestamp(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last time.Time
	for _, bill := range s.bills {
		if bill.UpdatedAt.After(last) {
			last = bill.UpdatedAt
		}
	}
	return last, !last.IsZero(), nil
}

// Upsert writes a bill keyed on ExternalID.
func (s *BillStore) Upsert(_ context.Context, bill domain.Bill) (driven.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.bills[bill.ExternalID]
	if ok {
		bill.ID = existing.ID
		bill.CreatedAt = existing.CreatedAt
		bill.UpdatedAt = now
		if bill.LastCheckedAt.IsZero() {
			bill.LastCheckedAt = existing.LastCheckedAt
		}
		s.bills[bill.ExternalID] = bill
		return driven.UpsertUpdated, nil
	}

	bill.ID = uuid.NewString()
	bill.CreatedAt = now
	bill.UpdatedAt = now
	if bill.LastCheckedAt.IsZero() {
		bill.LastCheckedAt = now
	}
	s.bills[bill.ExternalID] = bill
	return driven.UpsertInserted, nil
}

// Touch records a re-check timestamp for every version of a lineage.
func (s *BillStore) Touch(_ context.Context, key domain.LineageKey, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, bill := range s.bills {
		if bill.Lineage() == key {
			bill.LastCheckedAt = at
			s.bills[id] = bill
		}
	}
	return nil
}

// Len returns the number of stored bill versions.
func (s *BillStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bills)
}

// Get returns a stored bill by external ID.
func (s *BillStore) Get(externalID string) (domain.Bill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bill, ok := s.bills[externalID]
	return bill, ok
}
