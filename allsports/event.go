package allsports

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotBatch is returned for frames that are valid JSON but not an array of events
var ErrNotBatch = errors.New("frame is not an event batch")

// ErrMissingTeams is returned for records without both team names
var ErrMissingTeams = errors.New("event has no home or away team")

// LiveEvent is one record of a live_events batch. Auxiliary collections stay raw so a
// wrongly shaped field falls back to its empty default instead of rejecting the record.
type LiveEvent struct {
	EventKey            FlexString      `json:"event_key"`
	EventHomeTeam       string          `json:"event_home_team"`
	EventAwayTeam       string          `json:"event_away_team"`
	EventFinalResult    string          `json:"event_final_result"`
	EventHalftimeResult string          `json:"event_halftime_result"`
	EventStatus         FlexString      `json:"event_status"`
	EventTime           FlexString      `json:"event_time"`
	LeagueName          FlexString      `json:"league_name"`
	Goalscorers         json.RawMessage `json:"goalscorers"`
	Cards               json.RawMessage `json:"cards"`
	Substitutes         json.RawMessage `json:"substitutes"`
	Statistics          json.RawMessage `json:"statistics"`
	Lineups             json.RawMessage `json:"lineups"`
}

// FlexString decodes a JSON string or number; anything else decodes to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = FlexString(num.String())
		return nil
	}
	*s = ""
	return nil
}

// DecodeFrame splits a raw frame into its event records, preserving order.
func DecodeFrame(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)

	var raw json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON frame: %w", err)
	}
	if trimmed[0] != '[' {
		return nil, ErrNotBatch
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("failed to decode batch: %w", err)
	}
	return records, nil
}

// DecodeEvent parses one record of a batch.
func DecodeEvent(raw json.RawMessage) (*LiveEvent, error) {
	var ev LiveEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	// Team names are kept verbatim; correlation is exact. Blank names cannot correlate at all.
	if strings.TrimSpace(ev.EventHomeTeam) == "" || strings.TrimSpace(ev.EventAwayTeam) == "" {
		return nil, ErrMissingTeams
	}
	return &ev, nil
}

// String identifies the event in logs
func (e *LiveEvent) String() string {
	if e.EventKey != "" {
		return fmt.Sprintf("%s vs %s (#%s)", e.EventHomeTeam, e.EventAwayTeam, e.EventKey)
	}
	return e.EventHomeTeam + " vs " + e.EventAwayTeam
}

// ParseResult turns "<home> - <away>" into two scores. A part that does not start with
// digits, or is missing, scores 0.
func ParseResult(result string) (home, away int) {
	parts := strings.Split(result, " - ")
	home = parseScore(parts[0])
	if len(parts) > 1 {
		away = parseScore(parts[1])
	}
	return home, away
}

func parseScore(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
