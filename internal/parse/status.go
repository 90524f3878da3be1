package parse

import (
	"strings"

	"parkkean-backend/internal/model"
)

// limitedRatio is the occupancy share at which a lot is considered LIMITED.
const limitedRatio = 0.75

// statusSynonyms maps upstream status vocabulary onto canonical statuses.
var statusSynonyms = map[string]model.LotStatus{
	"AVAILABLE":     model.StatusOpen,
	"OPEN":          model.StatusOpen,
	"FREE":          model.StatusOpen,
	"EMPTY":         model.StatusOpen,
	"PARTIAL":       model.StatusLimited,
	"LIMITED":       model.StatusLimited,
	"NEAR CAPACITY": model.StatusLimited,
	"ALMOST FULL":   model.StatusLimited,
	"CROWDED":       model.StatusLimited,
	"FULL":          model.StatusFull,
	"CLOSED":        model.StatusFull,
	"BLOCKED":       model.StatusFull,
}

// NormalizeStatus maps a raw status token, or failing that the occupancy ratio,
// to a canonical status. It never fails; OPEN is the fallback.
func NormalizeStatus(raw any, capacity, occupancy *float64) model.LotStatus {
	if token, ok := tokenString(raw); ok {
		token = strings.ToUpper(token)
		if status, ok := statusSynonyms[token]; ok {
			return status
		}
		if s := model.LotStatus(token); model.ValidStatus(s) {
			return s
		}
	}

	if capacity != nil && occupancy != nil && *capacity > 0 {
		switch {
		case *occupancy >= *capacity:
			return model.StatusFull
		case *occupancy >= *capacity*limitedRatio:
			return model.StatusLimited
		}
	}
	return model.StatusOpen
}
