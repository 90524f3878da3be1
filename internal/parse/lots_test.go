package parse

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkkean-backend/internal/model"
)

// decode mirrors how the feed client decodes upstream bodies.
func decode(t *testing.T, body string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewBufferString(body))
	dec.UseNumber()
	var payload any
	require.NoError(t, dec.Decode(&payload))
	return payload
}

func TestNormalizeLots_WrappedPayloadWithAliases(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	payload := decode(t, `{"lots": [{"lotId": "a1", "occupied": 5, "total": 10}]}`)

	lots := NormalizeLots(payload, now, time.UTC)

	require.Len(t, lots, 1)
	lot := lots[0]
	assert.Equal(t, "A1", lot.Code)
	assert.Equal(t, "A1", lot.Name)
	require.NotNil(t, lot.Occupancy)
	require.NotNil(t, lot.Capacity)
	assert.Equal(t, 5.0, *lot.Occupancy)
	assert.Equal(t, 10.0, *lot.Capacity)
	assert.Equal(t, model.StatusOpen, lot.Status) // 50% is below the LIMITED threshold
	assert.Nil(t, lot.WalkTime)
	assert.Nil(t, lot.FullBy)
	assert.Equal(t, now.UnixMilli(), lot.LastUpdated)
}

func TestNormalizeLots_DropsEntriesWithoutCode(t *testing.T) {
	payload := decode(t, `[
		{"code": "north", "occupancy": 1},
		{"name": "Nameless", "occupancy": 2},
		{"lot_code": " south ", "occupancy": 3}
	]`)

	lots := NormalizeLots(payload, time.Now(), nil)

	require.Len(t, lots, 2)
	assert.Equal(t, "NORTH", lots[0].Code)
	assert.Equal(t, "SOUTH", lots[1].Code)
	assert.Equal(t, 3.0, *lots[1].Occupancy)
}

func TestNormalizeLots_FieldResolution(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		body   string
		assert func(t *testing.T, lot LiveLot)
	}{
		{
			name: "Primary field names",
			body: `[{"code":"stem","name":"STEM Lot","capacity":160,"occupancy":120,"status":"crowded","walk_time":5,"full_by":"09:30","last_updated":1700000000}]`,
			assert: func(t *testing.T, lot LiveLot) {
				assert.Equal(t, "STEM", lot.Code)
				assert.Equal(t, "STEM Lot", lot.Name)
				assert.Equal(t, 160.0, *lot.Capacity)
				assert.Equal(t, 120.0, *lot.Occupancy)
				assert.Equal(t, model.StatusLimited, lot.Status)
				assert.Equal(t, 5.0, *lot.WalkTime)
				assert.Equal(t, "09:30", *lot.FullBy)
				assert.Equal(t, int64(1700000000000), lot.LastUpdated)
			},
		},
		{
			name: "Alternative field names",
			body: `[{"lot_id":"glab","lot_name":"GLAB","totalCapacity":"130","vehicles":"130","walkingMinutes":4,"walking_minutes":"4","fullBy":"10:30","updated_at":"2023-11-14T22:13:20Z","state":"closed"}]`,
			assert: func(t *testing.T, lot LiveLot) {
				assert.Equal(t, "GLAB", lot.Code)
				assert.Equal(t, "GLAB", lot.Name)
				assert.Equal(t, 130.0, *lot.Capacity)
				assert.Equal(t, 130.0, *lot.Occupancy)
				assert.Equal(t, 4.0, *lot.WalkTime)
				assert.Equal(t, "10:30", *lot.FullBy)
				assert.Equal(t, model.StatusFull, lot.Status)
				assert.Equal(t, int64(1700000000000), lot.LastUpdated)
			},
		},
		{
			name: "Numeric code",
			body: `[{"id": 17, "max": 20, "used": 15}]`,
			assert: func(t *testing.T, lot LiveLot) {
				assert.Equal(t, "17", lot.Code)
				assert.Equal(t, model.StatusLimited, lot.Status)
			},
		},
		{
			name: "Blank preferred key falls through to the next alias",
			body: `[{"code": "  ", "lotCode": "harwood"}]`,
			assert: func(t *testing.T, lot LiveLot) {
				assert.Equal(t, "HARWOOD", lot.Code)
			},
		},
		{
			name: "Unparsable numbers become unknown",
			body: `[{"code":"kean","capacity":"lots","occupancy":-4,"walk_time":"soon","full_by":42}]`,
			assert: func(t *testing.T, lot LiveLot) {
				assert.Nil(t, lot.Capacity)
				assert.Nil(t, lot.Occupancy)
				assert.Nil(t, lot.WalkTime)
				assert.Nil(t, lot.FullBy)
				assert.Equal(t, model.StatusOpen, lot.Status)
				assert.Equal(t, now.UnixMilli(), lot.LastUpdated)
			},
		},
		{
			name: "Out of range numbers become unknown",
			body: `[{"code":"a","capacity":"1e20","occupancy":3000000000,"walk_time":1e300,"last_updated":"1e30"}]`,
			assert: func(t *testing.T, lot LiveLot) {
				assert.Nil(t, lot.Capacity)
				assert.Nil(t, lot.Occupancy)
				assert.Nil(t, lot.WalkTime)
				assert.Equal(t, now.UnixMilli(), lot.LastUpdated)
			},
		},
		{
			name: "Largest quantity is kept",
			body: `[{"code":"a","capacity":2147483647}]`,
			assert: func(t *testing.T, lot LiveLot) {
				require.NotNil(t, lot.Capacity)
				assert.Equal(t, float64(2147483647), *lot.Capacity)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lots := NormalizeLots(decode(t, tc.body), now, time.UTC)
			require.Len(t, lots, 1)
			tc.assert(t, lots[0])
		})
	}
}

func TestNormalizeLots_UnusablePayloads(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "Object without lots", body: `{"data": [{"code": "a"}]}`},
		{name: "Lots is not an array", body: `{"lots": {"code": "a"}}`},
		{name: "Scalar", body: `42`},
		{name: "Null", body: `null`},
		{name: "Array of scalars", body: `[1, "two", null]`},
		{name: "Empty array", body: `[]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lots := NormalizeLots(decode(t, tc.body), time.Now(), time.UTC)
			assert.Empty(t, lots)
		})
	}
}
