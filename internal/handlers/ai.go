// internal/handlers/ai.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/artfulguesser/backend/internal/prompt"
)

// The AI game modes (AI picks a prompt and judges the guess; user draws and
// the AI guesses) are thin call/response glue over the generator boundary.

type generatePromptRequest struct {
	Difficulty string `json:"difficulty"`
}

// GeneratePromptHandler handles POST /ai/prompt.
func (srv *Server) GeneratePromptHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if srv.Generator == nil {
		writeError(w, http.StatusServiceUnavailable, "generator not configured")
		return
	}
	var req generatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	difficulty := prompt.Difficulty(req.Difficulty)
	switch difficulty {
	case prompt.DifficultyEasy, prompt.DifficultyMedium, prompt.DifficultyHard:
	case "":
		difficulty = prompt.DifficultyMedium
	default:
		writeError(w, http.StatusBadRequest, "difficulty must be easy, medium or hard")
		return
	}

	res, err := srv.Generator.GeneratePrompt(r.Context(), difficulty)
	if err != nil {
		srv.Log.WithError(err).Warn("generate prompt failed")
		writeError(w, http.StatusBadGateway, "prompt generation failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type evaluateGuessRequest struct {
	DrawingDescription string `json:"drawingDescription"`
	UserGuess          string `json:"userGuess"`
}

// EvaluateGuessHandler handles POST /ai/evaluate.
func (srv *Server) EvaluateGuessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if srv.Generator == nil {
		writeError(w, http.StatusServiceUnavailable, "generator not configured")
		return
	}
	var req evaluateGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DrawingDescription == "" || req.UserGuess == "" {
		writeError(w, http.StatusBadRequest, "drawingDescription and userGuess are required")
		return
	}

	res, err := srv.Generator.EvaluateGuess(r.Context(), req.DrawingDescription, req.UserGuess)
	if err != nil {
		srv.Log.WithError(err).Warn("evaluate guess failed")
		writeError(w, http.StatusBadGateway, "guess evaluation failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type guessDrawingRequest struct {
	DrawingDataURI string `json:"drawingDataUri"`
}

// GuessDrawingHandler handles POST /ai/guess-drawing.
func (srv *Server) GuessDrawingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if srv.Generator == nil {
		writeError(w, http.StatusServiceUnavailable, "generator not configured")
		return
	}
	var req guessDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DrawingDataURI == "" {
		writeError(w, http.StatusBadRequest, "drawingDataUri is required")
		return
	}

	res, err := srv.Generator.GuessDrawing(r.Context(), req.DrawingDataURI)
	if err != nil {
		srv.Log.WithError(err).Warn("guess drawing failed")
		writeError(w, http.StatusBadGateway, "drawing analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
