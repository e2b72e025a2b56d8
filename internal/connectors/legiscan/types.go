package legiscan

import "encoding/json"

// statusOK is the payload-level success marker.
const statusOK = "OK"

// envelope is the outer shape of every API response.
type envelope struct {
	Status string `json:"status"`
	Alert  *alert `json:"alert,omitempty"`

	SearchResult *searchResult   `json:"searchresult,omitempty"`
	Bill         json.RawMessage `json:"bill,omitempty"`
}

// alert carries the API's payload-level error message.
type alert struct {
	Message string `json:"message"`
}

// searchResult is the body of a getSearchRaw response.
type searchResult struct {
	Summary searchSummary `json:"summary"`
	Results []searchHit   `json:"results"`
}

type searchSummary struct {
	Count     int    `json:"count"`
	Relevancy string `json:"relevancy"`
}

// searchHit is one lightweight search result.
type searchHit struct {
	BillID         int    `json:"bill_id"`
	State          string `json:"state"`
	BillNumber     string `json:"bill_number"`
	Relevance      int    `json:"relevance"`
	LastActionDate string `json:"last_action_date"`
	URL            string `json:"url"`
}

// rawBill is the full record returned by getBill. Only the fields the
// mapper depends on are decoded.
type rawBill struct {
	BillID      int        `json:"bill_id"`
	State       string     `json:"state"`
	BillNumber  string     `json:"bill_number"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Body        string     `json:"body"`
	Chamber     string     `json:"chamber"`
	StatusDate  string     `json:"status_date"`
	URL         string     `json:"url"`
	StateLink   string     `json:"state_link"`
	Session     rawSession `json:"session"`
	History     []rawEvent `json:"history"`
}

type rawSession struct {
	SessionTitle string `json:"session_title"`
	YearStart    int    `json:"year_start"`
}

type rawEvent struct {
	Date   string `json:"date"`
	Action string `json:"action"`
}
