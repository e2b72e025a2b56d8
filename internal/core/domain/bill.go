package domain

import (
	"fmt"
	"strings"
	"time"
)

// Chamber identifies the legislative body a bill originates from.
type Chamber string

const (
	// ChamberUpper is the upper chamber (senate).
	ChamberUpper Chamber = "upper"

	// ChamberLower is the lower chamber (house or assembly).
	ChamberLower Chamber = "lower"

	// ChamberOther covers joint committees, executive filings and
	// anything the source does not attribute to a single chamber.
	ChamberOther Chamber = "other"
)

// JurisdictionAll is the query wildcard accepted by the remote search
// API. It is never a stored value.
const JurisdictionAll = "ALL"

// Bill is a single version of a legislative bill. Bills are immutable
// once stored under a given ExternalID; a newer version of the same
// bill produces a new record with a different VersionDate.
type Bill struct {
	// ID is the store-assigned row identifier.
	ID string

	// ExternalID is the composite idempotency key:
	// "<jurisdiction> <bill_number> <version_date>".
	ExternalID string

	// SourceID is the opaque identifier assigned by the remote API.
	// It is stable across versions of the same bill.
	SourceID int

	// Jurisdiction is the two-letter region code (e.g. "CA").
	Jurisdiction string

	// BillNumber is unique within a jurisdiction and session.
	BillNumber string

	// SessionYear is derived from the session metadata.
	SessionYear int

	// Chamber is derived from the source's free-text body field.
	Chamber Chamber

	// Title is the bill's official title.
	Title string

	// Summary is the free-text description, when the source has one.
	Summary string

	// VersionDate is the date of the most recent status change known
	// at ingestion time.
	VersionDate time.Time

	// SourceURL is the jurisdiction's own page for the bill.
	SourceURL string

	// CanonicalURL is the remote API's page for the bill.
	CanonicalURL string

	// RelevanceScore is the 0-100 score from the search step. It is
	// persisted only as the last known value, not a ranking guarantee.
	RelevanceScore int

	// CreatedAt is when the record was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time

	// LastCheckedAt is when an ingestion run last re-examined this
	// lineage. Used by the check-existing staleness predicate.
	LastCheckedAt time.Time
}

// Lineage returns the identity of the bill across versions.
func (b Bill) Lineage() LineageKey {
	return LineageKey{Jurisdiction: b.Jurisdiction, BillNumber: b.BillNumber}
}

// LineageKey identifies a bill across versions, independent of
// version date. The diff filter keys on this pair because the remote
// API does not expose date filtering.
type LineageKey struct {
	Jurisdiction string
	BillNumber   string
}

func (k LineageKey) String() string {
	return k.Jurisdiction + " " + k.BillNumber
}

// LineageState is what the store knows about a lineage: the newest
// version date plus the metadata the check-existing mode predicates on.
type LineageState struct {
	// VersionDate is the most recent version date stored for the lineage.
	VersionDate time.Time

	// RelevanceScore is the last stored relevance for the lineage.
	RelevanceScore int

	// LastCheckedAt is when the lineage was last re-examined.
	LastCheckedAt time.Time
}

// ExternalID builds the composite identity key for a bill version.
func ExternalID(jurisdiction, billNumber string, versionDate time.Time) string {
	return fmt.Sprintf("%s %s %s", jurisdiction, billNumber, versionDate.Format("2006-01-02"))
}

// ChamberForSource maps the remote API's free-text body field to a
// Chamber. The body name wins when recognisable; otherwise the bill
// number prefix is used as a heuristic (H*/A* lower, S* upper).
func ChamberForSource(body, billNumber string) Chamber {
	upper := strings.ToUpper(body)
	switch {
	case strings.Contains(upper, "HOUSE"), strings.Contains(upper, "ASSEMBLY"):
		return ChamberLower
	case strings.Contains(upper, "SENATE"):
		return ChamberUpper
	}

	num := strings.ToUpper(billNumber)
	switch {
	case strings.HasPrefix(num, "H"), strings.HasPrefix(num, "A"):
		return ChamberLower
	case strings.HasPrefix(num, "S"):
		return ChamberUpper
	}
	return ChamberOther
}
