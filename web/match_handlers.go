package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"sportz-service/pkg/common"
	"sportz-service/pkg/metrics"
	"sportz-service/pkg/models"
	"sportz-service/services"
)

var errMatchNotFound = common.NewAppError(http.StatusNotFound, "Match not found.", common.ErrNotFound)

// storageError hides the cause of a failed store call behind a stable message.
func (s *Server) storageError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, errMatchNotFound)
		return
	}
	s.logger.Error("%s: %v", message, err)
	writeError(w, common.NewAppError(http.StatusInternalServerError, message, err))
}

// handleListMatches GET /matches?limit=&status=
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parseLimit(query)
	if err != nil {
		writeError(w, err)
		return
	}

	status := models.MatchStatus(query.Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, common.NewAppError(http.StatusBadRequest, "Invalid query.", &validationError{
			problems: []string{"status must be one of scheduled, live, finished"},
		}))
		return
	}

	matches, err := s.matches.ListMatches(r.Context(), services.MatchFilter{Status: status, Limit: limit})
	if err != nil {
		s.storageError(w, "Failed to list matches.", err)
		return
	}

	writeData(w, http.StatusOK, matches)
}

// handleCreateMatch POST /matches
func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	nm, err := req.toNewMatch(s.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	match, err := s.matches.CreateMatch(r.Context(), nm)
	if err != nil {
		s.storageError(w, "Failed to create match.", err)
		return
	}

	metrics.MatchesCreated.WithLabelValues("api").Inc()
	s.notifier.MatchCreated(match)

	writeData(w, http.StatusCreated, match)
}

// handleGetMatch GET /matches/{id}
func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := parseMatchID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	match, err := s.matches.GetMatch(r.Context(), id)
	if err != nil {
		s.storageError(w, "Failed to get match.", err)
		return
	}

	writeData(w, http.StatusOK, match)
}

// handleUpdateScore PATCH /matches/{id}/score
func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	id, err := parseMatchID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	metadata, err := req.validate()
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.applier.Apply(r.Context(), id, req.HomeScore.Value, req.AwayScore.Value, metadata)
	if err != nil {
		s.storageError(w, "Failed to update score.", err)
		return
	}

	writeData(w, http.StatusOK, updated)
}
