package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicsignal/billfeed/internal/core/domain"
	"github.com/civicsignal/billfeed/internal/core/ports/driven"
)

// dateFormat is how version dates are stored: lexicographic ordering
// matches chronological ordering.
const dateFormat = "2006-01-02"

// sourceIDChunkSize bounds the IN clause for bulk source-id lookups.
const sourceIDChunkSize = 500

// billStore implements driven.BillStore.
type billStore struct {
	store *Store
}

var _ driven.BillStore = (*billStore)(nil)

// ExistingKeys returns the newest known state per lineage.
func (s *billStore) ExistingKeys(ctx context.Context, jurisdiction string) (map[domain.LineageKey]domain.LineageState, error) {
	query := `
		SELECT jurisdiction, bill_number, MAX(version_date), relevance_score, last_checked_at
		FROM bills
	`
	var args []any
	if jurisdiction != "" && jurisdiction != domain.JurisdictionAll {
		query += " WHERE jurisdiction = ?"
		args = append(args, jurisdiction)
	}
	query += " GROUP BY jurisdiction, bill_number"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying existing keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[domain.LineageKey]domain.LineageState)
	for rows.Next() {
		var key domain.LineageKey
		var versionDate string
		var relevance int
		var lastChecked sql.NullTime
		if err := rows.Scan(&key.Jurisdiction, &key.BillNumber, &versionDate, &relevance, &lastChecked); err != nil {
			return nil, fmt.Errorf("scanning lineage: %w", err)
		}

		state := domain.LineageState{RelevanceScore: relevance}
		if d, err := time.Parse(dateFormat, versionDate); err == nil {
			state.VersionDate = d
		}
		if lastChecked.Valid {
			state.LastCheckedAt = lastChecked.Time
		}
		keys[key] = state
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lineages: %w", err)
	}

	return keys, nil
}

// ExistingSourceIDs reports which of the given source IDs are stored.
func (s *billStore) ExistingSourceIDs(ctx context.Context, sourceIDs []int) (map[int]bool, error) {
	stored := make(map[int]bool)

	for start := 0; start < len(sourceIDs); start += sourceIDChunkSize {
		end := start + sourceIDChunkSize
		if end > len(sourceIDs) {
			end = len(sourceIDs)
		}
		chunk := sourceIDs[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		rows, err := s.store.db.QueryContext(ctx,
			"SELECT DISTINCT source_id FROM bills WHERE source_id IN ("+placeholders+")", args...)
		if err != nil {
			return nil, fmt.Errorf("querying source ids: %w", err)
		}

		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning source id: %w", err)
			}
			stored[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterating source ids: %w", err)
		}
		rows.Close()
	}

	return stored, nil
}

// LastRunTimestamp returns the newest updated_at across all bills.
// The column is selected directly rather than through MAX(): an
// aggregate loses the DATETIME decltype and the driver would hand the
// value back as a string.
func (s *billStore) LastRunTimestamp(ctx context.Context) (time.Time, bool, error) {
	var last time.Time
	row := s.store.db.QueryRowContext(ctx,
		"SELECT updated_at FROM bills ORDER BY updated_at DESC LIMIT 1")
	switch err := row.Scan(&last); {
	case err == sql.ErrNoRows:
		return time.Time{}, false, nil
	case err != nil:
		return time.Time{}, false, fmt.Errorf("querying last run: %w", err)
	}
	return last, true, nil
}

// Upsert writes a bill keyed on external_id. Inserts get a fresh row
// ID; conflicts update the mutable columns in place.
func (s *billStore) Upsert(ctx context.Context, bill domain.Bill) (driven.UpsertOutcome, error) {
	now := time.Now().UTC()

	// Record whether the row existed before the write; the upsert
	// itself cannot tell us.
	var existingID string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id FROM bills WHERE external_id = ?", bill.ExternalID).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		// New row.
	case err != nil:
		return "", fmt.Errorf("%w: checking %s: %w", domain.ErrStorageFailed, bill.ExternalID, err)
	}

	id := existingID
	if id == "" {
		id = uuid.NewString()
	}

	lastChecked := bill.LastCheckedAt
	if lastChecked.IsZero() {
		lastChecked = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO bills (
			id, external_id, source_id, jurisdiction, bill_number, session_year,
			chamber, title, summary, version_date, source_url, canonical_url,
			relevance_score, last_checked_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			source_id = excluded.source_id,
			session_year = excluded.session_year,
			chamber = excluded.chamber,
			title = excluded.title,
			summary = excluded.summary,
			source_url = excluded.source_url,
			canonical_url = excluded.canonical_url,
			relevance_score = excluded.relevance_score,
			last_checked_at = excluded.last_checked_at,
			updated_at = excluded.updated_at
	`, id, bill.ExternalID, bill.SourceID, bill.Jurisdiction, bill.BillNumber,
		bill.SessionYear, string(bill.Chamber), bill.Title, nullString(bill.Summary),
		bill.VersionDate.Format(dateFormat), nullString(bill.SourceURL),
		nullString(bill.CanonicalURL), bill.RelevanceScore, lastChecked, now, now)

	if err != nil {
		return "", fmt.Errorf("%w: upserting %s: %w", domain.ErrStorageFailed, bill.ExternalID, err)
	}

	if existingID != "" {
		return driven.UpsertUpdated, nil
	}
	return driven.UpsertInserted, nil
}

// Touch records that a run re-examined a lineage.
func (s *billStore) Touch(ctx context.Context, key domain.LineageKey, at time.Time) error {
	_, err := s.store.db.ExecContext(ctx,
		"UPDATE bills SET last_checked_at = ? WHERE jurisdiction = ? AND bill_number = ?",
		at.UTC(), key.Jurisdiction, key.BillNumber)
	if err != nil {
		return fmt.Errorf("touching %s: %w", key, err)
	}
	return nil
}

// nullString converts empty strings to NULL for storage.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
