package domain

import "time"

// RemoteSummary is a lightweight search hit returned by the remote
// API's search operation. It carries just enough identity to decide
// whether a detailed fetch is worth a quota call.
type RemoteSummary struct {
	// SourceID is the remote API's opaque bill identifier.
	SourceID int

	// Jurisdiction is the two-letter region code of the hit.
	Jurisdiction string

	// BillNumber is the bill number within the jurisdiction.
	BillNumber string

	// Relevance is the 0-100 search relevance score.
	Relevance int

	// StatusDate is the hit's last status change date. Zero when the
	// search operation did not report one.
	StatusDate time.Time

	// URL is the remote API's page for the bill.
	URL string
}

// Lineage returns the identity key of the summary's bill.
func (s RemoteSummary) Lineage() LineageKey {
	return LineageKey{Jurisdiction: s.Jurisdiction, BillNumber: s.BillNumber}
}

// SearchMeta describes one search invocation for quota observability.
type SearchMeta struct {
	// TotalCount is the total number of results the API declared.
	TotalCount int

	// CallsUsed is the client's cumulative call count after the search.
	CallsUsed int
}
