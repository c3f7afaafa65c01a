// internal/models/session.go
package models

import (
	"fmt"
	"time"
)

// Status is the phase of a session's per-round state machine. It only moves
// forward within a round; the looping transition back to StatusDrawing happens
// at turn advance, and StatusGameOver is terminal.
type Status string

const (
	StatusLobby     Status = "lobby"
	StatusStarting  Status = "starting"
	StatusDrawing   Status = "drawing"
	StatusGuessing  Status = "guessing"
	StatusRoundOver Status = "round-over"
	StatusGameOver  Status = "game-over"
)

// Player is one participant's record inside a session. Records are never
// deleted on leave; IsActive flips to false so the score history and the
// rotation slot in PlayerOrder survive a disconnect.
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	IsHost      bool   `json:"isHost"`
	IsActive    bool   `json:"isActive"`
}

// GuessEntry is one submitted guess for the current round. DisplayName is
// denormalized so the view layer doesn't need a second lookup.
type GuessEntry struct {
	PlayerID    string    `json:"playerId"`
	DisplayName string    `json:"displayName"`
	Guess       string    `json:"guess"`
	Timestamp   time.Time `json:"timestamp"`
}

// RoundResults is the snapshot of the round that just finished. It is only
// present while the session sits in StatusRoundOver and is cleared on the
// next turn advance.
type RoundResults struct {
	Word            string   `json:"word"`
	DrawerID        string   `json:"drawerId"`
	CorrectGuessers []string `json:"correctGuessers"`
}

// Settings are fixed at session creation and never updated afterwards.
type Settings struct {
	MaxPlayers int    `json:"maxPlayers"`
	GameMode   string `json:"gameMode"`
	Language   string `json:"language"`
}

// Session is the full shared state of one game room, persisted as a single
// document keyed by ID.
type Session struct {
	ID     string `json:"id"`
	Status Status `json:"status"`

	Players map[string]*Player `json:"players"`
	HostID  string             `json:"hostId"`

	CurrentDrawerID       string `json:"currentDrawerId,omitempty"`
	CurrentWord           string `json:"currentWord,omitempty"`
	CurrentDrawingDataURL string `json:"currentDrawingDataUrl,omitempty"`

	Guesses []GuessEntry `json:"guesses"`

	CurrentRound int `json:"currentRound"`
	MaxRounds    int `json:"maxRounds"`

	RoundStartTime  time.Time `json:"roundStartTime,omitempty"`
	DrawTimeSeconds int       `json:"drawTimeSeconds"`

	CreatedAt time.Time `json:"createdAt"`
	Settings  Settings  `json:"settings"`

	RoundResults *RoundResults `json:"roundResults,omitempty"`

	// PlayerOrder is the turn rotation, append-only. Leaving never removes an
	// entry; the rotation scan skips inactive players instead.
	PlayerOrder               []string `json:"playerOrder"`
	CurrentPlayerIndexInOrder int      `json:"currentPlayerIndexInOrder"`
}

// Player returns the record for id, or nil if the id never joined.
func (s *Session) Player(id string) *Player {
	if s.Players == nil {
		return nil
	}
	return s.Players[id]
}

// IsPlayerActive reports whether id has a record and that record is active.
func (s *Session) IsPlayerActive(id string) bool {
	p := s.Player(id)
	return p != nil && p.IsActive
}

// ActivePlayerIDs returns the ids of active players in PlayerOrder order.
func (s *Session) ActivePlayerIDs() []string {
	var ids []string
	for _, id := range s.PlayerOrder {
		if s.IsPlayerActive(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasGuessed reports whether playerID already has an entry in the current
// round's guesses.
func (s *Session) HasGuessed(playerID string) bool {
	for _, g := range s.Guesses {
		if g.PlayerID == playerID {
			return true
		}
	}
	return false
}

// RoundLive reports whether the countdown is running.
func (s *Session) RoundLive() bool {
	return s.Status == StatusDrawing || s.Status == StatusGuessing
}

// Remaining derives the time left in the current round from the stored round
// anchor. It is a pure function of the snapshot and the caller's clock; no
// countdown state is stored anywhere.
func (s *Session) Remaining(now time.Time) time.Duration {
	if !s.RoundLive() || s.RoundStartTime.IsZero() {
		return 0
	}
	d := time.Duration(s.DrawTimeSeconds)*time.Second - now.Sub(s.RoundStartTime)
	if d < 0 {
		return 0
	}
	return d
}

// Clone returns a deep copy, so snapshots handed to subscribers can't alias
// the stored document.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Players = make(map[string]*Player, len(s.Players))
	for id, p := range s.Players {
		pc := *p
		cp.Players[id] = &pc
	}
	cp.Guesses = append([]GuessEntry(nil), s.Guesses...)
	cp.PlayerOrder = append([]string(nil), s.PlayerOrder...)
	if s.RoundResults != nil {
		rr := *s.RoundResults
		rr.CorrectGuessers = append([]string(nil), s.RoundResults.CorrectGuessers...)
		cp.RoundResults = &rr
	}
	return &cp
}

// Validate checks the per-status field invariants: round-over is the only
// status carrying RoundResults, drawer/word are set exactly during live
// rounds, and index/host fields stay consistent with PlayerOrder.
func (s *Session) Validate() error {
	switch s.Status {
	case StatusLobby, StatusStarting, StatusDrawing, StatusGuessing, StatusRoundOver, StatusGameOver:
	default:
		return fmt.Errorf("unknown status %q", s.Status)
	}
	if s.RoundResults != nil && s.Status != StatusRoundOver {
		return fmt.Errorf("roundResults present in status %q", s.Status)
	}
	if s.RoundLive() {
		if s.CurrentDrawerID == "" {
			return fmt.Errorf("no drawer in status %q", s.Status)
		}
		if s.CurrentWord == "" {
			return fmt.Errorf("no word in status %q", s.Status)
		}
		if indexOf(s.PlayerOrder, s.CurrentDrawerID) < 0 {
			return fmt.Errorf("drawer %q not in playerOrder", s.CurrentDrawerID)
		}
	}
	if s.Status == StatusGameOver || s.Status == StatusLobby {
		if s.CurrentDrawerID != "" || s.CurrentWord != "" {
			return fmt.Errorf("drawer or word set in status %q", s.Status)
		}
	}
	for id, p := range s.Players {
		if p.IsHost != (id == s.HostID) {
			return fmt.Errorf("host flag of %q disagrees with hostId %q", id, s.HostID)
		}
	}
	if len(s.PlayerOrder) > 0 {
		if s.CurrentPlayerIndexInOrder < 0 || s.CurrentPlayerIndexInOrder >= len(s.PlayerOrder) {
			return fmt.Errorf("currentPlayerIndexInOrder %d out of range", s.CurrentPlayerIndexInOrder)
		}
	}
	for _, id := range s.PlayerOrder {
		if s.Player(id) == nil {
			return fmt.Errorf("playerOrder entry %q has no player record", id)
		}
	}
	return nil
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}
