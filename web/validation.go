package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sportz-service/pkg/common"
	"sportz-service/pkg/models"
	"sportz-service/services"
)

// validationError lists every problem found in a request.
type validationError struct {
	problems []string
}

func (e *validationError) Error() string {
	return strings.Join(e.problems, "; ")
}

func (e *validationError) add(format string, args ...interface{}) {
	e.problems = append(e.problems, fmt.Sprintf(format, args...))
}

// result returns nil when nothing was added, else a 400 AppError wrapping e.
func (e *validationError) result(message string) error {
	if len(e.problems) == 0 {
		return nil
	}
	return common.NewAppError(http.StatusBadRequest, message, e)
}

// intParam accepts a JSON integer or a string holding one, so "2" and 2 are both valid scores.
type intParam struct {
	Value int
	Set   bool
	Valid bool
}

func (p *intParam) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	p.Set = true

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= math.MaxInt32 {
			p.Value, p.Valid = int(v), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			p.Value, p.Valid = n, true
		}
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid JSON body.", common.ErrInvalidInput)
	}
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

func isNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func checkScore(verr *validationError, field string, p intParam, required bool) {
	switch {
	case !p.Set:
		if required {
			verr.add("%s is required", field)
		}
	case !p.Valid:
		verr.add("%s must be an integer", field)
	case p.Value < 0:
		verr.add("%s must not be negative", field)
	}
}

// parseMatchID reads the {id} route variable.
func parseMatchID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid match id.", common.ErrInvalidInput)
	}
	return id, nil
}

// parseLimit reads ?limit=: absent means default, otherwise 1..MaxListLimit.
func parseLimit(query url.Values) (int, error) {
	raw := strings.TrimSpace(query.Get("limit"))
	if raw == "" {
		return services.DefaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > services.MaxListLimit {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid query.", &validationError{
			problems: []string{fmt.Sprintf("limit must be an integer between 1 and %d", services.MaxListLimit)},
		})
	}
	return limit, nil
}

type createMatchRequest struct {
	Sport     string   `json:"sport"`
	HomeTeam  string   `json:"homeTeam"`
	AwayTeam  string   `json:"awayTeam"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	HomeScore intParam `json:"homeScore"`
	AwayScore intParam `json:"awayScore"`
}

// toNewMatch validates the request; the status is derived from the window at now.
func (req *createMatchRequest) toNewMatch(now time.Time) (models.NewMatch, error) {
	verr := &validationError{}

	sport := strings.TrimSpace(req.Sport)
	home := strings.TrimSpace(req.HomeTeam)
	away := strings.TrimSpace(req.AwayTeam)
	if sport == "" {
		verr.add("sport is required")
	}
	if home == "" {
		verr.add("homeTeam is required")
	}
	if away == "" {
		verr.add("awayTeam is required")
	}

	start, startErr := time.Parse(time.RFC3339, req.StartTime)
	if startErr != nil {
		verr.add("startTime must be a valid ISO date string")
	}
	end, endErr := time.Parse(time.RFC3339, req.EndTime)
	if endErr != nil {
		verr.add("endTime must be a valid ISO date string")
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		verr.add("endTime must be chronologically after startTime")
	}

	checkScore(verr, "homeScore", req.HomeScore, false)
	checkScore(verr, "awayScore", req.AwayScore, false)

	if err := verr.result("Invalid payload."); err != nil {
		return models.NewMatch{}, err
	}

	return models.NewMatch{
		Sport:     sport,
		HomeTeam:  home,
		AwayTeam:  away,
		Status:    models.StatusAt(start, end, now),
		StartTime: start,
		EndTime:   end,
		HomeScore: req.HomeScore.Value,
		AwayScore: req.AwayScore.Value,
		Metadata:  json.RawMessage(`{}`),
	}, nil
}

type updateScoreRequest struct {
	HomeScore intParam        `json:"homeScore"`
	AwayScore intParam        `json:"awayScore"`
	Metadata  json.RawMessage `json:"metadata"`
}

// validate returns the metadata to store; nil keeps the current document.
func (req *updateScoreRequest) validate() (json.RawMessage, error) {
	verr := &validationError{}
	checkScore(verr, "homeScore", req.HomeScore, true)
	checkScore(verr, "awayScore", req.AwayScore, true)

	var metadata json.RawMessage
	if !isNullJSON(req.Metadata) {
		if !isJSONObject(req.Metadata) {
			verr.add("metadata must be an object")
		}
		metadata = req.Metadata
	}

	if err := verr.result("Invalid score data."); err != nil {
		return nil, err
	}
	return metadata, nil
}

type createCommentaryRequest struct {
	Minute    *int            `json:"minute"`
	Sequence  *int            `json:"sequence"`
	Period    string          `json:"period"`
	EventType string          `json:"eventType"`
	Actor     string          `json:"actor"`
	Team      string          `json:"team"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
	Tags      []string        `json:"tags"`
}

func (req *createCommentaryRequest) toNewCommentary(matchID int64) (models.NewCommentary, error) {
	verr := &validationError{}

	counters := []struct {
		field string
		value *int
	}{
		{"minute", req.Minute},
		{"sequence", req.Sequence},
	}
	for _, c := range counters {
		if c.value == nil {
			verr.add("%s is required", c.field)
		} else if *c.value < 0 {
			verr.add("%s must not be negative", c.field)
		}
	}

	text := []struct {
		field string
		value *string
	}{
		{"period", &req.Period},
		{"eventType", &req.EventType},
		{"actor", &req.Actor},
		{"team", &req.Team},
		{"message", &req.Message},
	}
	for _, f := range text {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			verr.add("%s is required", f.field)
		}
	}

	metadata := json.RawMessage(`{}`)
	if !isNullJSON(req.Metadata) {
		if !isJSONObject(req.Metadata) {
			verr.add("metadata must be an object")
		}
		metadata = req.Metadata
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	if err := verr.result("Invalid commentary payload."); err != nil {
		return models.NewCommentary{}, err
	}

	return models.NewCommentary{
		MatchID:   matchID,
		Minute:    *req.Minute,
		Sequence:  *req.Sequence,
		Period:    req.Period,
		EventType: req.EventType,
		Actor:     req.Actor,
		Team:      req.Team,
		Message:   req.Message,
		Metadata:  metadata,
		Tags:      tags,
	}, nil
}
