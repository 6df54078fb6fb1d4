package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"sportz-service/pkg/common"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData wraps payload as {"data": payload}.
func writeData(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, map[string]interface{}{"data": payload})
}

// writeError renders err as {"error": ...}. Internal failures never leak their cause.
func writeError(w http.ResponseWriter, err error) {
	status := common.StatusFor(err)
	resp := errorResponse{Error: http.StatusText(status)}

	var appErr *common.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
	}

	var verr *validationError
	if errors.As(err, &verr) {
		resp.Details = verr.problems
	}

	writeJSON(w, status, resp)
}
