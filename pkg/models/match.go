package models

import (
	"encoding/json"
	"time"
)

// Match is the authoritative state of one fixture.
type Match struct {
	ID        int64           `json:"id"`
	Sport     string          `json:"sport"`
	HomeTeam  string          `json:"homeTeam"`
	AwayTeam  string          `json:"awayTeam"`
	Status    MatchStatus     `json:"status"`
	StartTime time.Time       `json:"startTime"`
	EndTime   time.Time       `json:"endTime"`
	HomeScore int             `json:"homeScore"`
	AwayScore int             `json:"awayScore"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewMatch holds the fields needed to insert a match.
type NewMatch struct {
	Sport     string
	HomeTeam  string
	AwayTeam  string
	Status    MatchStatus
	StartTime time.Time
	EndTime   time.Time
	HomeScore int
	AwayScore int
	Metadata  json.RawMessage
}

// MatchStatus lifecycle state of a match
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusFinished  MatchStatus = "finished"
)

// Valid reports whether s is one of the known statuses.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusLive, MatchStatusFinished:
		return true
	}
	return false
}

// StatusAt derives the status of a match window at the given instant.
func StatusAt(start, end, now time.Time) MatchStatus {
	if now.Before(start) {
		return MatchStatusScheduled
	}
	if !now.Before(end) {
		return MatchStatusFinished
	}
	return MatchStatusLive
}

// MatchMetadata is the structured document built from live feed records.
// Collections are never nil so they serialize as [] / {}.
type MatchMetadata struct {
	Goalscorers []json.RawMessage          `json:"goalscorers"`
	Cards       []json.RawMessage          `json:"cards"`
	Substitutes []json.RawMessage          `json:"substitutes"`
	Statistics  []json.RawMessage          `json:"statistics"`
	Lineups     map[string]json.RawMessage `json:"lineups"`
	EventStatus string                     `json:"event_status"`
	EventTime   string                     `json:"event_time"`
	LeagueName  string                     `json:"league_name"`
}
