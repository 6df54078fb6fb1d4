package models

import (
	"encoding/json"
	"time"
)

// Commentary is one play-by-play entry attached to a match.
type Commentary struct {
	ID        int64           `json:"id"`
	MatchID   int64           `json:"matchId"`
	Minute    int             `json:"minute"`
	Sequence  int             `json:"sequence"`
	Period    string          `json:"period"`
	EventType string          `json:"eventType"`
	Actor     string          `json:"actor"`
	Team      string          `json:"team"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
	Tags      []string        `json:"tags"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewCommentary holds the fields needed to insert a commentary entry.
type NewCommentary struct {
	MatchID   int64
	Minute    int
	Sequence  int
	Period    string
	EventType string
	Actor     string
	Team      string
	Message   string
	Metadata  json.RawMessage
	Tags      []string
}
