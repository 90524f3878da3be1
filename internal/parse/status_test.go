package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"parkkean-backend/internal/model"
)

func ptr(f float64) *float64 { return &f }

func TestNormalizeStatus_Synonyms(t *testing.T) {
	testCases := map[string]model.LotStatus{
		"available":     model.StatusOpen,
		" Open ":        model.StatusOpen,
		"FREE":          model.StatusOpen,
		"empty":         model.StatusOpen,
		"partial":       model.StatusLimited,
		"Limited":       model.StatusLimited,
		"near capacity": model.StatusLimited,
		"ALMOST FULL":   model.StatusLimited,
		" crowded ":     model.StatusLimited,
		"full":          model.StatusFull,
		"Closed":        model.StatusFull,
		"\tblocked\n":   model.StatusFull,
	}

	for token, expected := range testCases {
		t.Run(token, func(t *testing.T) {
			// A recognized token wins over the occupancy ratio.
			assert.Equal(t, expected, NormalizeStatus(token, ptr(100), ptr(0)))
			assert.Equal(t, expected, NormalizeStatus(token, nil, nil))
		})
	}
}

func TestNormalizeStatus_DerivedFromOccupancy(t *testing.T) {
	testCases := []struct {
		name      string
		raw       any
		capacity  *float64
		occupancy *float64
		expected  model.LotStatus
	}{
		{name: "At capacity", capacity: ptr(100), occupancy: ptr(100), expected: model.StatusFull},
		{name: "Over capacity", capacity: ptr(100), occupancy: ptr(130), expected: model.StatusFull},
		{name: "Eighty percent", capacity: ptr(100), occupancy: ptr(80), expected: model.StatusLimited},
		{name: "Exactly seventy-five percent", capacity: ptr(100), occupancy: ptr(75), expected: model.StatusLimited},
		{name: "Half full", capacity: ptr(100), occupancy: ptr(50), expected: model.StatusOpen},
		{name: "Unknown token falls back to ratio", raw: "mystery", capacity: ptr(10), occupancy: ptr(10), expected: model.StatusFull},
		{name: "Blank token falls back to ratio", raw: "   ", capacity: ptr(10), occupancy: ptr(9), expected: model.StatusLimited},
		{name: "Zero capacity", capacity: ptr(0), occupancy: ptr(10), expected: model.StatusOpen},
		{name: "Missing occupancy", capacity: ptr(100), expected: model.StatusOpen},
		{name: "Missing capacity", occupancy: ptr(100), expected: model.StatusOpen},
		{name: "Nothing known", expected: model.StatusOpen},
		{name: "Numeric token", raw: json.Number("3"), capacity: ptr(4), occupancy: ptr(4), expected: model.StatusFull},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeStatus(tc.raw, tc.capacity, tc.occupancy))
		})
	}
}
