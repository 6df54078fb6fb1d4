package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"sportz-service/pkg/common"
	"sportz-service/pkg/metrics"
	"sportz-service/pkg/models"
)

// ProvisionalMatchDuration is the window given to matches first seen on the feed: a full
// football match including stoppage time.
const ProvisionalMatchDuration = 105 * time.Minute

// Correlator maps feed events to stored matches by natural key, creating the match on first
// sight. Team names are compared exactly; an upstream rename produces a new match.
type Correlator struct {
	store    MatchStore
	notifier Notifier
	clock    clockwork.Clock
	logger   common.Logger
}

func NewCorrelator(store MatchStore, notifier Notifier, clock clockwork.Clock) *Correlator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Correlator{
		store:    store,
		notifier: notifier,
		clock:    clock,
		logger:   common.NewLogger("Correlator"),
	}
}

// ResolveMatch returns the match for (sport, homeTeam, awayTeam). created reports whether it
// was inserted by this call, in which case MatchCreated has been announced.
func (c *Correlator) ResolveMatch(ctx context.Context, sport, homeTeam, awayTeam string) (match *models.Match, created bool, err error) {
	match, err = c.store.FindMatch(ctx, sport, homeTeam, awayTeam)
	if err == nil {
		return match, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, fmt.Errorf("find match %s vs %s: %w", homeTeam, awayTeam, err)
	}

	c.logger.Info("Creating new %s match: %s vs %s", sport, homeTeam, awayTeam)

	now := c.clock.Now()
	match, err = c.store.CreateMatch(ctx, models.NewMatch{
		Sport:     sport,
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		Status:    models.MatchStatusLive,
		StartTime: now,
		EndTime:   now.Add(ProvisionalMatchDuration),
		Metadata:  json.RawMessage(`{}`),
	})
	if err != nil {
		return nil, false, fmt.Errorf("create match %s vs %s: %w", homeTeam, awayTeam, err)
	}

	metrics.MatchesCreated.WithLabelValues("feed").Inc()
	c.notifier.MatchCreated(match)

	return match, true, nil
}
