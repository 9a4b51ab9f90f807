package server

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/scoundrel/internal/session"
)

// actionResponse answers every game mutation.
type actionResponse struct {
	Applied bool         `json:"applied"`
	Reason  string       `json:"reason,omitempty"`
	State   session.View `json:"state"`
}

type stateResponse struct {
	State session.View `json:"state"`
}

type playerResponse struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
