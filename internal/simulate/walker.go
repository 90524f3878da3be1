// Package simulate produces plausible occupancy movement when no live feed is available.
package simulate

import (
	"math"
	"math/rand"
	"sync"

	"parkkean-backend/internal/reconcile"
	"parkkean-backend/internal/store"
)

// Walker applies a bounded random walk to lot occupancy.
type Walker struct {
	mu          sync.Mutex
	rng         *rand.Rand
	fluctuation float64
}

// NewWalker creates a Walker. fluctuation is the total swing as a fraction of
// capacity, so 0.05 moves each lot by at most 2.5% either way.
func NewWalker(rng *rand.Rand, fluctuation float64) *Walker {
	return &Walker{rng: rng, fluctuation: fluctuation}
}

// Step returns one occupancy update per lot, clamped to [0, capacity] and
// stamped with nowMillis.
func (w *Walker) Step(lots []store.StoredLot, nowMillis int64) []reconcile.Update {
	w.mu.Lock()
	defer w.mu.Unlock()

	updates := make([]reconcile.Update, 0, len(lots))
	for _, lot := range lots {
		delta := int(math.Round((w.rng.Float64() - 0.5) * float64(lot.Capacity) * w.fluctuation))
		occupancy := clamp(lot.Occupancy+delta, 0, lot.Capacity)
		ts := nowMillis
		updates = append(updates, reconcile.Update{
			LotID:  lot.ID,
			Fields: store.LotFields{Occupancy: &occupancy, LastUpdated: &ts},
		})
	}
	return updates
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
