// internal/handlers/session.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/artfulguesser/backend/internal/models"
)

const (
	defaultMaxRounds  = 3
	defaultDrawTime   = 60
	defaultMaxPlayers = 8
)

type createSessionRequest struct {
	PlayerID        string `json:"playerId"`
	DisplayName     string `json:"displayName"`
	MaxRounds       int    `json:"maxRounds"`
	DrawTimeSeconds int    `json:"drawTimeSeconds"`
	MaxPlayers      int    `json:"maxPlayers"`
}

// CreateSessionHandler handles POST /session/create. The caller supplies its
// own opaque player id; identity is not verified anywhere.
func (srv *Server) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PlayerID == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "playerId and displayName are required")
		return
	}
	if req.MaxRounds <= 0 {
		req.MaxRounds = defaultMaxRounds
	}
	if req.DrawTimeSeconds <= 0 {
		req.DrawTimeSeconds = defaultDrawTime
	}
	if req.MaxPlayers <= 0 {
		req.MaxPlayers = defaultMaxPlayers
	}

	host := models.Player{ID: req.PlayerID, DisplayName: req.DisplayName}
	id, err := srv.Sessions.CreateSession(r.Context(), host, req.MaxRounds, req.DrawTimeSeconds, req.MaxPlayers)
	if err != nil {
		srv.Log.WithError(err).Warn("create session failed")
		writeError(w, httpStatusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

type joinSessionRequest struct {
	SessionID   string `json:"sessionId"`
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
}

// JoinSessionHandler handles POST /session/join. Rejoining with a known
// player id succeeds in any session status.
func (srv *Server) JoinSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req joinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.PlayerID == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "sessionId, playerId and displayName are required")
		return
	}

	p := models.Player{ID: req.PlayerID, DisplayName: req.DisplayName}
	if err := srv.Sessions.JoinSession(r.Context(), req.SessionID, p); err != nil {
		writeError(w, httpStatusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
