package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrUnknownSensor = errors.New("unknown sensor line")
	ErrBadRequest    = errors.New("bad request")
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to a status code in one place. Internal errors
// never leak their description.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownSensor):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Description: err.Error()})
	case errors.Is(err, ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Description: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
	}
}
