package models

import (
	"encoding/json"
	"time"
)

// EventType discriminates broadcast events on the wire.
type EventType string

const (
	EventTypeMatchCreated    EventType = "match_created"
	EventTypeScoreUpdated    EventType = "score_updated"
	EventTypeCommentaryAdded EventType = "commentary_added"
)

// BroadcastEvent is one state change fanned out to subscribers: {"type": ..., "data": ...}.
type BroadcastEvent struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ScoreUpdate is the payload carried by a score change.
type ScoreUpdate struct {
	HomeScore int             `json:"homeScore"`
	AwayScore int             `json:"awayScore"`
	Metadata  json.RawMessage `json:"metadata"`
}

// ScoreUpdatedPayload is the data of a score_updated event.
type ScoreUpdatedPayload struct {
	MatchID int64 `json:"matchId"`
	ScoreUpdate
}

// NewMatchCreatedEvent wraps a freshly created match.
func NewMatchCreatedEvent(m *Match, at time.Time) *BroadcastEvent {
	return &BroadcastEvent{Type: EventTypeMatchCreated, Data: m, Timestamp: at}
}

// NewScoreUpdatedEvent wraps a score change for a match.
func NewScoreUpdatedEvent(matchID int64, update ScoreUpdate, at time.Time) *BroadcastEvent {
	return &BroadcastEvent{
		Type:      EventTypeScoreUpdated,
		Data:      ScoreUpdatedPayload{MatchID: matchID, ScoreUpdate: update},
		Timestamp: at,
	}
}

// NewCommentaryAddedEvent wraps a new commentary entry.
func NewCommentaryAddedEvent(c *Commentary, at time.Time) *BroadcastEvent {
	return &BroadcastEvent{Type: EventTypeCommentaryAdded, Data: c, Timestamp: at}
}
