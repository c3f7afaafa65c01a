// internal/handlers/session_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/artfulguesser/backend/internal/models"
)

// wsIntent is one client message on the session socket.
type wsIntent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	DataURL string `json:"dataUrl,omitempty"`
}

type wsSnapshot struct {
	Type    string          `json:"type"`
	Session *models.Session `json:"session"`
}

type wsError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionWSHandler upgrades /session/ws/{session_id}?player=&name= to a
// WebSocket. The connection joins the session (rejoin semantics apply),
// streams a redacted snapshot on every document change, and accepts intents:
// start, guess, early_guessing, next_turn, drawing, leave. Closing the socket
// marks the player inactive.
func (srv *Server) SessionWSHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/session/ws/"), "/", 2)[0]
	if sessionID == "" {
		http.Error(w, "missing session_id in path (/session/ws/{session_id})", http.StatusBadRequest)
		return
	}
	playerID := r.URL.Query().Get("player")
	displayName := r.URL.Query().Get("name")
	if playerID == "" || displayName == "" {
		http.Error(w, "player and name query params are required", http.StatusBadRequest)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"session"},
		OriginPatterns: []string{"*"}, // Adjust for production security.
	})
	if err != nil {
		srv.Log.Warnf("websocket accept error for session %s: %v", sessionID, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != "session" {
		c.Close(websocket.StatusPolicyViolation, "client must speak the session subprotocol")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	p := models.Player{ID: playerID, DisplayName: displayName}
	if err := srv.Sessions.JoinSession(ctx, sessionID, p); err != nil {
		srv.Log.Warnf("join failed for player %s on session %s: %v", playerID, sessionID, err)
		c.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}

	out := make(chan []byte, 16)
	unsubscribe, err := srv.Sessions.Store.Subscribe(ctx, sessionID, func(snap *models.Session) {
		payload, merr := json.Marshal(wsSnapshot{Type: "session_state", Session: redactFor(snap, playerID)})
		if merr != nil {
			srv.Log.Warnf("marshal snapshot for session %s: %v", sessionID, merr)
			return
		}
		enqueueLatest(out, payload)
	})
	if err != nil {
		c.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer unsubscribe()

	// Send the current state immediately so the client doesn't wait for the
	// first change.
	if snap, err := srv.Sessions.Store.Read(ctx, sessionID); err == nil {
		if payload, merr := json.Marshal(wsSnapshot{Type: "session_state", Session: redactFor(snap, playerID)}); merr == nil {
			enqueueLatest(out, payload)
		}
	}

	go srv.writePump(ctx, c, out)

	srv.Log.Infof("player %s connected to session %s from %s", playerID, sessionID, r.RemoteAddr)
	srv.readPump(ctx, c, sessionID, playerID, displayName, out)

	// Socket is gone; flip the player inactive. A reconnect joins again.
	leaveCtx, leaveCancel := context.WithCancel(context.Background())
	defer leaveCancel()
	if err := srv.Sessions.LeaveSession(leaveCtx, sessionID, playerID); err != nil {
		srv.Log.Warnf("deactivate player %s on session %s: %v", playerID, sessionID, err)
	}
}

func (srv *Server) writePump(ctx context.Context, c *websocket.Conn, out <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-out:
			if !ok {
				return
			}
			if err := c.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}
}

func (srv *Server) readPump(ctx context.Context, c *websocket.Conn, sessionID, playerID, displayName string, out chan<- []byte) {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus != websocket.StatusNormalClosure && closeStatus != websocket.StatusGoingAway &&
				!strings.Contains(err.Error(), "context canceled") {
				srv.Log.Warnf("session %s: read error for player %s: %v", sessionID, playerID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var intent wsIntent
		if err := json.Unmarshal(msg, &intent); err != nil {
			sendWSError(out, "invalid JSON")
			continue
		}

		var actionErr error
		switch intent.Type {
		case "start":
			actionErr = srv.Sessions.StartSession(ctx, sessionID, playerID)
		case "guess":
			actionErr = srv.Sessions.SubmitGuess(ctx, sessionID, playerID, displayName, intent.Text)
		case "early_guessing":
			actionErr = srv.Sessions.BeginGuessing(ctx, sessionID, playerID)
		case "next_turn":
			actionErr = srv.Sessions.AdvanceTurn(ctx, sessionID, playerID)
		case "drawing":
			actionErr = srv.Sessions.UpdateDrawingSnapshot(ctx, sessionID, playerID, intent.DataURL)
		case "leave":
			actionErr = srv.Sessions.LeaveSession(ctx, sessionID, playerID)
		default:
			sendWSError(out, "unknown intent type")
			continue
		}
		if actionErr != nil {
			sendWSError(out, actionErr.Error())
		}
	}
}

// enqueueLatest delivers payload to out. When the buffer is full the oldest
// queued snapshot is evicted, never the new one, so a slow reader that drains
// late still ends up at the current state.
func enqueueLatest(out chan []byte, payload []byte) {
	for {
		select {
		case out <- payload:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}

func sendWSError(out chan<- []byte, msg string) {
	payload, err := json.Marshal(wsError{Type: "error", Message: msg})
	if err != nil {
		return
	}
	select {
	case out <- payload:
	default:
	}
}

// redactFor hides the secret word from everyone except the drawer and the
// host while a round is live. Redaction happens server-side so no client ever
// holds a word it shouldn't see.
func redactFor(snap *models.Session, playerID string) *models.Session {
	if snap == nil {
		return nil
	}
	if !snap.RoundLive() {
		return snap
	}
	if playerID == snap.CurrentDrawerID || playerID == snap.HostID {
		return snap
	}
	cp := snap.Clone()
	cp.CurrentWord = ""
	return cp
}
