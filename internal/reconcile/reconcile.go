// Package reconcile merges a live feed snapshot into the stored lots and
// writes the contributed fields back.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"unicode/utf8"

	"parkkean-backend/internal/model"
	"parkkean-backend/internal/parse"
	"parkkean-backend/internal/store"
)

// MergedLot is a stored lot after live overrides have been applied.
type MergedLot = store.StoredLot

// Update is the set of fields the feed contributed to one lot.
type Update struct {
	LotID  int64
	Fields store.LotFields
}

// Result is the outcome of merging a snapshot.
type Result struct {
	Lots    []MergedLot
	Updates []Update
}

// LotWriter persists partial lot updates.
type LotWriter interface {
	UpdateLotFields(ctx context.Context, id int64, fields store.LotFields) error
}

// Reconcile overlays live values onto stored lots matched by code. Stored lots
// keep their order; lots absent from the snapshot pass through unchanged.
// When the snapshot repeats a code, the last entry wins.
func Reconcile(stored []store.StoredLot, live []parse.LiveLot) Result {
	byCode := make(map[string]parse.LiveLot, len(live))
	for _, l := range live {
		byCode[codeKey(l.Code)] = l
	}

	res := Result{Lots: make([]MergedLot, 0, len(stored))}
	for _, lot := range stored {
		l, ok := byCode[codeKey(lot.Code)]
		if !ok {
			res.Lots = append(res.Lots, lot)
			continue
		}
		merged, fields := merge(lot, l)
		res.Lots = append(res.Lots, merged)
		if !fields.Empty() {
			res.Updates = append(res.Updates, Update{LotID: lot.ID, Fields: fields})
		}
	}
	return res
}

// Persist writes each update independently. Failures are logged and do not stop
// the remaining writes; the returned error joins all of them.
func Persist(ctx context.Context, w LotWriter, updates []Update) (int, error) {
	var (
		written int
		errs    []error
	)
	for _, u := range updates {
		if err := w.UpdateLotFields(ctx, u.LotID, u.Fields); err != nil {
			log.Printf("Error persisting live data for lot %d: %v", u.LotID, err)
			errs = append(errs, fmt.Errorf("lot %d: %w", u.LotID, err))
			continue
		}
		written++
	}
	return written, errors.Join(errs...)
}

func merge(lot store.StoredLot, l parse.LiveLot) (MergedLot, store.LotFields) {
	var f store.LotFields

	if v, ok := roundQuantity(l.Occupancy); ok {
		lot.Occupancy = v
		f.Occupancy = &v
	}
	if v, ok := roundQuantity(l.Capacity); ok {
		lot.Capacity = v
		f.Capacity = &v
	}
	if model.ValidStatus(l.Status) {
		s := l.Status
		lot.Status = s
		f.Status = &s
	}
	if v, ok := roundQuantity(l.WalkTime); ok {
		lot.WalkTime = v
		f.WalkTime = &v
	}
	if l.FullBy != nil {
		v := truncate(strings.TrimSpace(*l.FullBy), model.FullByMaxLen)
		lot.FullBy = &v
		f.FullBy = &v
	}
	if l.LastUpdated != 0 {
		v := l.LastUpdated
		lot.LastUpdated = v
		f.LastUpdated = &v
	}
	return lot, f
}

// roundQuantity rounds a live quantity, rejecting values a lot column cannot hold.
func roundQuantity(v *float64) (int, bool) {
	if v == nil || *v < 0 || *v > math.MaxInt32 {
		return 0, false
	}
	return int(math.Round(*v)), true
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

func codeKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
