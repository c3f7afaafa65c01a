// internal/handlers/api_server.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/artfulguesser/backend/internal/prompt"
	"github.com/artfulguesser/backend/internal/session"
)

// Server bundles the session engine and the prompt generator for the HTTP and
// WebSocket surface.
type Server struct {
	Sessions  *session.Service
	Generator prompt.Generator
	Log       *logrus.Logger
}

// NewServer wires the handler layer.
func NewServer(svc *session.Service, gen prompt.Generator, logger *logrus.Logger) *Server {
	return &Server{
		Sessions:  svc,
		Generator: gen,
		Log:       logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// httpStatusFor maps the engine's error taxonomy onto HTTP statuses. Store
// and transport failures fall through to 500; the client may retry manually.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionFull),
		errors.Is(err, session.ErrAlreadyStarted),
		errors.Is(err, session.ErrNotStarted),
		errors.Is(err, session.ErrNoActivePlayers),
		errors.Is(err, session.ErrRoundNotActive),
		errors.Is(err, session.ErrDrawerCannotGuess),
		errors.Is(err, session.ErrAlreadyGuessed):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotHost), errors.Is(err, session.ErrNotDrawer):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
