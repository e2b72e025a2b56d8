package legiscan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/civicsignal/billfeed/internal/core/domain"
)

var yearPattern = regexp.MustCompile(`(\d{4})`)

// MapBill converts one raw API record into the canonical Bill entity.
// relevance is the search hit's score, carried onto the mapped bill.
//
// Mapping failures are per-item errors wrapping domain.ErrMappingFailed;
// the orchestrator skips and counts them, never aborts.
func MapBill(raw rawBill, relevance int) (domain.Bill, error) {
	jurisdiction := strings.ToUpper(strings.TrimSpace(raw.State))
	billNumber := strings.TrimSpace(raw.BillNumber)
	if jurisdiction == "" || billNumber == "" {
		return domain.Bill{}, fmt.Errorf("%w: bill %d missing state or bill number",
			domain.ErrMappingFailed, raw.BillID)
	}

	versionDate, ok := versionDateFor(raw)
	if !ok {
		return domain.Bill{}, fmt.Errorf("%w: bill %d has no status or history date",
			domain.ErrMappingFailed, raw.BillID)
	}

	body := raw.Chamber
	if body == "" {
		body = raw.Body
	}

	canonicalURL := raw.URL
	if canonicalURL == "" {
		canonicalURL = fmt.Sprintf("https://legiscan.com/%s/bill/%d", jurisdiction, raw.BillID)
	}
	sourceURL := raw.StateLink
	if sourceURL == "" {
		sourceURL = canonicalURL
	}

	return domain.Bill{
		ExternalID:     domain.ExternalID(jurisdiction, billNumber, versionDate),
		SourceID:       raw.BillID,
		Jurisdiction:   jurisdiction,
		BillNumber:     billNumber,
		SessionYear:    sessionYearFor(raw),
		Chamber:        domain.ChamberForSource(body, billNumber),
		Title:          raw.Title,
		Summary:        raw.Description,
		VersionDate:    versionDate,
		SourceURL:      sourceURL,
		CanonicalURL:   canonicalURL,
		RelevanceScore: relevance,
	}, nil
}

// versionDateFor picks the bill's version date: the status date when
// present, otherwise the date of the first history action.
func versionDateFor(raw rawBill) (time.Time, bool) {
	if d, err := time.Parse(dateFormat, raw.StatusDate); err == nil {
		return d, true
	}
	if len(raw.History) > 0 {
		if d, err := time.Parse(dateFormat, raw.History[0].Date); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// sessionYearFor extracts the session year: the session's start year
// when declared, else the first 4-digit run in the session title, else
// the current year.
func sessionYearFor(raw rawBill) int {
	if raw.Session.YearStart > 0 {
		return raw.Session.YearStart
	}
	if m := yearPattern.FindString(raw.Session.SessionTitle); m != "" {
		if year, err := strconv.Atoi(m); err == nil {
			return year
		}
	}
	return time.Now().Year()
}
