// Package lots runs one reconciliation cycle per request: read the stored
// lots, fetch the live feed, merge, write back, and report reopened lots.
package lots

import (
	"context"
	"fmt"
	"log"

	"github.com/jonboulle/clockwork"

	"parkkean-backend/internal/model"
	"parkkean-backend/internal/observability"
	"parkkean-backend/internal/parse"
	"parkkean-backend/internal/reconcile"
	"parkkean-backend/internal/simulate"
	"parkkean-backend/internal/store"
)

// Fetcher is the live feed as seen by the service.
type Fetcher interface {
	Enabled() bool
	FetchSnapshot(ctx context.Context) ([]parse.LiveLot, bool)
}

// Notifier receives lots that stopped being full.
type Notifier interface {
	Dispatch(lotID int64)
}

// View is the lot list served to clients. Live is true only when this
// response carries data from the feed.
type View struct {
	Lots []store.StoredLot `json:"lots"`
	Live bool              `json:"live"`
}

// Service coordinates the store, the live feed and the simulator.
type Service struct {
	store    store.Store
	feed     Fetcher
	walker   *simulate.Walker
	notifier Notifier
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

// NewService creates a lot service. walker and notifier may be nil, which
// disables the refresh simulation and reopen notifications respectively.
func NewService(s store.Store, feed Fetcher, walker *simulate.Walker, notifier Notifier, metrics *observability.Metrics, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		store:    s,
		feed:     feed,
		walker:   walker,
		notifier: notifier,
		metrics:  metrics,
		clock:    clock,
	}
}

// Live reports whether a live feed is configured.
func (s *Service) Live() bool {
	return s.feed.Enabled()
}

// Current returns the stored lots, overlaid and persisted with live data when
// the feed has any. Only a failed store read is an error.
func (s *Service) Current(ctx context.Context) (View, error) {
	stored, err := s.store.ListLots(ctx)
	if err != nil {
		return View{}, fmt.Errorf("failed to read lots: %w", err)
	}

	merged, ok := s.applyLive(ctx, stored)
	if !ok {
		return View{Lots: stored}, nil
	}
	return View{Lots: merged, Live: true}, nil
}

// Refresh behaves like Current when live data is available. Otherwise it
// advances the simulator one step, persists it, and re-reads the store.
func (s *Service) Refresh(ctx context.Context) (View, error) {
	stored, err := s.store.ListLots(ctx)
	if err != nil {
		return View{}, fmt.Errorf("failed to read lots: %w", err)
	}

	if merged, ok := s.applyLive(ctx, stored); ok {
		return View{Lots: merged, Live: true}, nil
	}

	if s.walker == nil {
		return View{Lots: stored}, nil
	}

	updates := s.walker.Step(stored, s.clock.Now().UnixMilli())
	s.persist(ctx, updates)
	if s.metrics != nil {
		s.metrics.SimulatedSteps.Inc()
	}

	refreshed, err := s.store.ListLots(ctx)
	if err != nil {
		return View{}, fmt.Errorf("failed to re-read lots: %w", err)
	}
	return View{Lots: refreshed}, nil
}

// NotifyIfReopened dispatches a notification when a lot leaves FULL.
func (s *Service) NotifyIfReopened(lotID int64, before, after model.LotStatus) {
	if s.notifier == nil || before != model.StatusFull || after == model.StatusFull {
		return
	}
	s.notifier.Dispatch(lotID)
}

func (s *Service) applyLive(ctx context.Context, stored []store.StoredLot) ([]store.StoredLot, bool) {
	live, ok := s.feed.FetchSnapshot(ctx)
	if !ok {
		return nil, false
	}

	res := reconcile.Reconcile(stored, live)
	s.persist(ctx, res.Updates)

	for i, lot := range res.Lots {
		s.NotifyIfReopened(lot.ID, stored[i].Status, lot.Status)
	}
	return res.Lots, true
}

func (s *Service) persist(ctx context.Context, updates []reconcile.Update) {
	if len(updates) == 0 {
		return
	}
	written, err := reconcile.Persist(ctx, s.store, updates)
	if s.metrics != nil {
		s.metrics.ReconcileWrites.Add(float64(written))
		s.metrics.ReconcileWriteFailures.Add(float64(len(updates) - written))
	}
	if err != nil {
		log.Printf("Warning: %d of %d lot updates failed", len(updates)-written, len(updates))
	}
}
