package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"sportz-service/pkg/common"
)

// StatusSync periodically moves matches between scheduled, live and finished according to
// their time windows.
type StatusSync struct {
	store    MatchStore
	clock    clockwork.Clock
	interval time.Duration
	logger   common.Logger
}

func NewStatusSync(store MatchStore, clock clockwork.Clock, interval time.Duration) *StatusSync {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatusSync{
		store:    store,
		clock:    clock,
		interval: interval,
		logger:   common.NewLogger("StatusSync"),
	}
}

// Run syncs immediately and then on every interval until ctx is cancelled.
func (s *StatusSync) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.SyncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce performs one sweep and returns the number of matches whose status changed.
func (s *StatusSync) SyncOnce(ctx context.Context) int64 {
	changed, err := s.store.SyncStatuses(ctx, s.clock.Now())
	if err != nil {
		s.logger.Error("Status sync failed: %v", err)
		return 0
	}
	if changed > 0 {
		s.logger.Info("Updated status of %d matches", changed)
	}
	return changed
}
