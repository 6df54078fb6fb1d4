package services

import (
	"github.com/jonboulle/clockwork"

	"sportz-service/pkg/common"
	"sportz-service/pkg/metrics"
	"sportz-service/pkg/models"
)

// EventPublisher delivers a broadcast event somewhere: the websocket hub, a message broker.
// Publish must not block on slow consumers.
type EventPublisher interface {
	Publish(evt *models.BroadcastEvent)
}

// Notifier is the hook surface HTTP handlers and the feed processor announce changes through.
type Notifier interface {
	MatchCreated(m *models.Match)
	ScoreUpdated(matchID int64, update models.ScoreUpdate)
	CommentaryAdded(matchID int64, c *models.Commentary)
}

// Broadcaster turns hook calls into typed events and hands them to every publisher.
type Broadcaster struct {
	publishers []EventPublisher
	clock      clockwork.Clock
	logger     common.Logger
}

func NewBroadcaster(clock clockwork.Clock, publishers ...EventPublisher) *Broadcaster {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Broadcaster{
		publishers: publishers,
		clock:      clock,
		logger:     common.NewLogger("Broadcast"),
	}
}

func (b *Broadcaster) MatchCreated(m *models.Match) {
	b.publish(models.NewMatchCreatedEvent(m, b.clock.Now()))
}

func (b *Broadcaster) ScoreUpdated(matchID int64, update models.ScoreUpdate) {
	b.publish(models.NewScoreUpdatedEvent(matchID, update, b.clock.Now()))
}

func (b *Broadcaster) CommentaryAdded(matchID int64, c *models.Commentary) {
	entry := *c
	if entry.MatchID == 0 {
		entry.MatchID = matchID
	}
	b.publish(models.NewCommentaryAddedEvent(&entry, b.clock.Now()))
}

func (b *Broadcaster) publish(evt *models.BroadcastEvent) {
	metrics.BroadcastEvents.WithLabelValues(string(evt.Type)).Inc()
	b.logger.Debug("Publishing %s to %d publishers", evt.Type, len(b.publishers))

	for _, p := range b.publishers {
		p.Publish(evt)
	}
}
