// internal/session/errors.go
package session

import (
	"errors"

	"github.com/artfulguesser/backend/internal/store"
)

// ErrNotFound mirrors the store's not-found so callers only need one sentinel.
var ErrNotFound = store.ErrNotFound

var (
	// ErrSessionFull rejects a brand-new join once active players reach the
	// session's maxPlayers.
	ErrSessionFull = errors.New("session is full")
	// ErrAlreadyStarted rejects new joins and repeated starts after the game
	// has left the lobby. Rejoins are exempt.
	ErrAlreadyStarted = errors.New("game already started")
	// ErrNotStarted rejects turn operations while the session is still in the
	// lobby.
	ErrNotStarted = errors.New("game not started")
	// ErrNoActivePlayers rejects a start or advance with nobody left to draw.
	ErrNoActivePlayers = errors.New("no active players")
	// ErrNotHost rejects host-only intents (start, advance turn) from other
	// players.
	ErrNotHost = errors.New("player is not the host")
	// ErrNotDrawer rejects drawer-only intents (drawing updates, early
	// guessing phase) from other players.
	ErrNotDrawer = errors.New("player is not the current drawer")
	// ErrDrawerCannotGuess rejects the drawer guessing their own word.
	ErrDrawerCannotGuess = errors.New("drawer cannot submit a guess")
	// ErrAlreadyGuessed rejects a second guess from the same player within one
	// round.
	ErrAlreadyGuessed = errors.New("player already guessed this round")
	// ErrRoundNotActive rejects guesses and drawing updates outside a live
	// round.
	ErrRoundNotActive = errors.New("no round in progress")
)
