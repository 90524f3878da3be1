package simulate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkkean-backend/internal/model"
	"parkkean-backend/internal/store"
)

func lot(id int64, capacity, occupancy int) store.StoredLot {
	return store.StoredLot{Lot: model.Lot{ID: id, Code: "L", Capacity: capacity, Occupancy: occupancy}}
}

func TestWalker_StaysWithinBounds(t *testing.T) {
	w := NewWalker(rand.New(rand.NewSource(42)), 0.05)
	lots := []store.StoredLot{lot(1, 200, 100), lot(2, 140, 0), lot(3, 80, 80), lot(4, 0, 0)}

	for i := 0; i < 500; i++ {
		updates := w.Step(lots, 1700000000000)
		require.Len(t, updates, len(lots))

		for j, u := range updates {
			assert.Equal(t, lots[j].ID, u.LotID)
			require.NotNil(t, u.Fields.Occupancy)
			occ := *u.Fields.Occupancy

			assert.GreaterOrEqual(t, occ, 0)
			assert.LessOrEqual(t, occ, lots[j].Capacity)
			// 2.5% of 200 is 5.
			assert.LessOrEqual(t, abs(occ-lots[j].Occupancy), 5)

			require.NotNil(t, u.Fields.LastUpdated)
			assert.Equal(t, int64(1700000000000), *u.Fields.LastUpdated)
			assert.Nil(t, u.Fields.Status, "the walk moves occupancy only")
		}
	}
}

func TestWalker_Deterministic(t *testing.T) {
	lots := []store.StoredLot{lot(1, 300, 150), lot(2, 160, 90)}

	a := NewWalker(rand.New(rand.NewSource(7)), 0.05).Step(lots, 1)
	b := NewWalker(rand.New(rand.NewSource(7)), 0.05).Step(lots, 1)
	assert.Equal(t, a, b)
}

func TestWalker_ZeroFluctuationHoldsSteady(t *testing.T) {
	w := NewWalker(rand.New(rand.NewSource(1)), 0)
	updates := w.Step([]store.StoredLot{lot(1, 100, 37)}, 1)
	assert.Equal(t, 37, *updates[0].Fields.Occupancy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
