package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleListCommentary GET /matches/{id}/commentary?limit=
func (s *Server) handleListCommentary(w http.ResponseWriter, r *http.Request) {
	id, err := parseMatchID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.matches.GetMatch(r.Context(), id); err != nil {
		s.storageError(w, "Failed to list commentary.", err)
		return
	}

	entries, err := s.commentary.ListCommentary(r.Context(), id, limit)
	if err != nil {
		s.storageError(w, "Failed to list commentary.", err)
		return
	}

	writeData(w, http.StatusOK, entries)
}

// handleCreateCommentary POST /matches/{id}/commentary
func (s *Server) handleCreateCommentary(w http.ResponseWriter, r *http.Request) {
	id, err := parseMatchID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req createCommentaryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	nc, err := req.toNewCommentary(id)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.commentary.CreateCommentary(r.Context(), nc)
	if err != nil {
		s.storageError(w, "Failed to create commentary.", err)
		return
	}

	s.notifier.CommentaryAdded(id, entry)

	writeData(w, http.StatusCreated, entry)
}
