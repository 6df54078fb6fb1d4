package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sportz-service/allsports"
	"sportz-service/pkg/common"
	"sportz-service/pkg/metrics"
)

// FeedProcessor applies live feed batches to match state. It implements allsports.FrameHandler.
type FeedProcessor struct {
	sport      string
	correlator *Correlator
	applier    *StateApplier
	logger     common.Logger
}

func NewFeedProcessor(sport string, correlator *Correlator, applier *StateApplier) *FeedProcessor {
	return &FeedProcessor{
		sport:      sport,
		correlator: correlator,
		applier:    applier,
		logger:     common.NewLogger("FeedProcessor"),
	}
}

// HandleFrame processes one frame. Records run sequentially in array order so that a match
// created by an earlier record is visible to later ones.
func (p *FeedProcessor) HandleFrame(ctx context.Context, data []byte) {
	records, err := allsports.DecodeFrame(data)
	if errors.Is(err, allsports.ErrNotBatch) {
		metrics.FeedFrameErrors.WithLabelValues("not_batch").Inc()
		p.logger.Debug("Ignoring non-batch frame (%d bytes)", len(data))
		return
	}
	if err != nil {
		metrics.FeedFrameErrors.WithLabelValues("invalid_json").Inc()
		p.logger.Warn("Error processing feed frame: %v", err)
		return
	}

	for _, raw := range records {
		if ctx.Err() != nil {
			return
		}
		p.handleRecord(ctx, raw)
	}
}

func (p *FeedProcessor) handleRecord(ctx context.Context, raw json.RawMessage) {
	ev, err := allsports.DecodeEvent(raw)
	if err != nil {
		metrics.FeedEventsProcessed.WithLabelValues("skipped").Inc()
		p.logger.Warn("Skipping feed record: %v", err)
		return
	}

	err = p.ProcessEvent(ctx, ev)
	switch {
	case err == nil:
		metrics.FeedEventsProcessed.WithLabelValues("applied").Inc()
	case errors.Is(err, common.ErrNotFound):
		metrics.FeedEventsProcessed.WithLabelValues("not_found").Inc()
		p.logger.Warn("Match for %s disappeared before update, nothing to apply", ev)
	default:
		metrics.FeedEventsProcessed.WithLabelValues("failed").Inc()
		p.logger.Error("Dropping feed event %s: %v", ev, err)
	}
}

// ProcessEvent is one unit of work: resolve (creating if needed), extract, then apply.
func (p *FeedProcessor) ProcessEvent(ctx context.Context, ev *allsports.LiveEvent) error {
	match, _, err := p.correlator.ResolveMatch(ctx, p.sport, ev.EventHomeTeam, ev.EventAwayTeam)
	if err != nil {
		return err
	}

	homeScore, awayScore, metadata := allsports.Extract(ev)
	doc, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	if _, err := p.applier.Apply(ctx, match.ID, homeScore, awayScore, doc); err != nil {
		return err
	}

	p.logger.Info("[Match %d] Score updated from feed: %d-%d", match.ID, homeScore, awayScore)
	return nil
}
