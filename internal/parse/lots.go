package parse

import (
	"strings"
	"time"

	"parkkean-backend/internal/model"
)

// LiveLot is one normalized entry of the external occupancy feed.
type LiveLot struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Capacity    *float64        `json:"capacity"`
	Occupancy   *float64        `json:"occupancy"`
	Status      model.LotStatus `json:"status"`
	WalkTime    *float64        `json:"walk_time"`
	FullBy      *string         `json:"full_by"`
	LastUpdated int64           `json:"last_updated"`
}

// Field aliases observed across upstream feeds, in priority order.
var (
	codeKeys        = []string{"code", "lotCode", "lot_code", "id", "lotId", "lot_id"}
	nameKeys        = []string{"name", "lotName", "lot_name"}
	capacityKeys    = []string{"capacity", "totalCapacity", "max", "total"}
	occupancyKeys   = []string{"occupancy", "occupied", "used", "vehicles"}
	walkTimeKeys    = []string{"walk_time", "walkTime", "walking_minutes"}
	fullByKeys      = []string{"full_by", "fullBy"}
	statusKeys      = []string{"status", "state"}
	lastUpdatedKeys = []string{"last_updated", "lastUpdated", "updated_at", "timestamp"}
)

// lotsKey is the property under which wrapped payloads carry their lots.
const lotsKey = "lots"

// NormalizeLots converts a decoded feed payload into LiveLots. The payload may be
// a bare array or an object with a "lots" array; anything else yields nothing.
// Entries without a usable code are dropped and the order of the rest is kept.
func NormalizeLots(payload any, now time.Time, loc *time.Location) []LiveLot {
	var entries []any
	switch p := payload.(type) {
	case []any:
		entries = p
	case map[string]any:
		entries, _ = p[lotsKey].([]any)
	}

	lots := make([]LiveLot, 0, len(entries))
	for _, entry := range entries {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if lot, ok := normalizeLot(item, now, loc); ok {
			lots = append(lots, lot)
		}
	}
	return lots
}

func normalizeLot(item map[string]any, now time.Time, loc *time.Location) (LiveLot, bool) {
	rawCode, ok := tokenString(lookup(item, codeKeys))
	if !ok {
		return LiveLot{}, false
	}
	code := strings.ToUpper(rawCode)

	name, ok := tokenString(lookup(item, nameKeys))
	if !ok {
		name = code
	}

	capacity := toQuantity(lookup(item, capacityKeys))
	occupancy := toQuantity(lookup(item, occupancyKeys))

	return LiveLot{
		Code:        code,
		Name:        name,
		Capacity:    capacity,
		Occupancy:   occupancy,
		Status:      NormalizeStatus(lookup(item, statusKeys), capacity, occupancy),
		WalkTime:    toQuantity(lookup(item, walkTimeKeys)),
		FullBy:      lookupString(item, fullByKeys),
		LastUpdated: CoerceTimestamp(lookup(item, lastUpdatedKeys), now, loc),
	}, true
}

// lookup returns the first value under keys that is present and not blank.
func lookup(item map[string]any, keys []string) any {
	for _, key := range keys {
		v, ok := item[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// lookupString is lookup restricted to string values.
func lookupString(item map[string]any, keys []string) *string {
	for _, key := range keys {
		s, ok := item[key].(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return &s
		}
	}
	return nil
}
