package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestChamberForSource_BodyNames tests mapping from recognisable body names
func TestChamberForSource_BodyNames(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		billNumber string
		expected   Chamber
	}{
		{
			name:       "house maps to lower",
			body:       "House",
			billNumber: "HB 101",
			expected:   ChamberLower,
		},
		{
			name:       "assembly maps to lower",
			body:       "State Assembly",
			billNumber: "AB 52",
			expected:   ChamberLower,
		},
		{
			name:       "senate maps to upper",
			body:       "Senate",
			billNumber: "SB 12",
			expected:   ChamberUpper,
		},
		{
			name:       "body name wins over bill number",
			body:       "Senate",
			billNumber: "HB 9",
			expected:   ChamberUpper,
		},
		{
			name:       "case insensitive",
			body:       "house of representatives",
			billNumber: "",
			expected:   ChamberLower,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChamberForSource(tt.body, tt.billNumber))
		})
	}
}

// TestChamberForSource_NumberHeuristics tests the bill-number fallback
func TestChamberForSource_NumberHeuristics(t *testing.T) {
	tests := []struct {
		name       string
		billNumber string
		expected   Chamber
	}{
		{name: "H prefix", billNumber: "HB 101", expected: ChamberLower},
		{name: "HR prefix", billNumber: "HR 7", expected: ChamberLower},
		{name: "A prefix", billNumber: "AB 2930", expected: ChamberLower},
		{name: "S prefix", billNumber: "SB 1047", expected: ChamberUpper},
		{name: "SR prefix", billNumber: "sr 4", expected: ChamberUpper},
		{name: "unknown prefix", billNumber: "LB 212", expected: ChamberOther},
		{name: "empty", billNumber: "", expected: ChamberOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChamberForSource("", tt.billNumber))
		})
	}
}

func TestExternalID(t *testing.T) {
	d := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "CA AB 2930 2026-03-14", ExternalID("CA", "AB 2930", d))
}

func TestBill_Lineage(t *testing.T) {
	b := Bill{Jurisdiction: "NY", BillNumber: "S 1169"}
	key := b.Lineage()
	assert.Equal(t, LineageKey{Jurisdiction: "NY", BillNumber: "S 1169"}, key)
	assert.Equal(t, "NY S 1169", key.String())
}
