package driven

import (
	"context"

	"github.com/civicsignal/billfeed/internal/core/domain"
)

// SearchClient provides rate-limited access to the remote legislative
// data API. Implementations own the minimum inter-call spacing and the
// bounded cooldown-retry policy on rate-limit rejections, so callers
// may issue calls back to back.
//
// The remote API does not support filtering by date; callers search
// broadly and diff locally against the store.
type SearchClient interface {
	// Search runs one search call. jurisdiction is a region code or
	// domain.JurisdictionAll. Results preserve the API's ordering.
	Search(ctx context.Context, query, jurisdiction string) ([]domain.RemoteSummary, domain.SearchMeta, error)

	// FetchDetail fetches the full raw record for one bill and maps it
	// into the canonical entity. relevance is the search hit's score,
	// attached to the mapped bill.
	FetchDetail(ctx context.Context, sourceID, relevance int) (domain.Bill, error)

	// Calls returns the cumulative number of API calls issued by this
	// client instance. Read-only to callers.
	Calls() int
}
