// internal/models/session_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveSession() *Session {
	return &Session{
		ID:     "s1",
		Status: StatusDrawing,
		Players: map[string]*Player{
			"p1": {ID: "p1", IsHost: true, IsActive: true},
			"p2": {ID: "p2", IsActive: true},
			"p3": {ID: "p3"},
		},
		HostID:          "p1",
		CurrentDrawerID: "p1",
		CurrentWord:     "kedi",
		CurrentRound:    1,
		MaxRounds:       3,
		RoundStartTime:  time.Now(),
		DrawTimeSeconds: 60,
		Settings:        Settings{MaxPlayers: 8, GameMode: "classic", Language: "tr"},
		PlayerOrder:     []string{"p1", "p2", "p3"},
	}
}

func TestActivePlayerIDsFollowsOrder(t *testing.T) {
	s := liveSession()
	assert.Equal(t, []string{"p1", "p2"}, s.ActivePlayerIDs())

	s.Players["p3"].IsActive = true
	s.Players["p1"].IsActive = false
	assert.Equal(t, []string{"p2", "p3"}, s.ActivePlayerIDs())
}

func TestCloneIsDeep(t *testing.T) {
	s := liveSession()
	s.Guesses = []GuessEntry{{PlayerID: "p2", Guess: "ev"}}
	s.RoundResults = &RoundResults{Word: "kedi", DrawerID: "p1", CorrectGuessers: []string{"p2"}}

	c := s.Clone()
	c.Players["p2"].Score = 10
	c.Guesses[0].Guess = "araba"
	c.PlayerOrder[0] = "px"
	c.RoundResults.Word = "ev"

	assert.Equal(t, 0, s.Players["p2"].Score)
	assert.Equal(t, "ev", s.Guesses[0].Guess)
	assert.Equal(t, "p1", s.PlayerOrder[0])
	assert.Equal(t, "kedi", s.RoundResults.Word)
}

func TestValidate(t *testing.T) {
	require.NoError(t, liveSession().Validate())

	t.Run("drawing without a drawer", func(t *testing.T) {
		s := liveSession()
		s.CurrentDrawerID = ""
		assert.Error(t, s.Validate())
	})

	t.Run("drawer outside rotation", func(t *testing.T) {
		s := liveSession()
		s.CurrentDrawerID = "px"
		assert.Error(t, s.Validate())
	})

	t.Run("host flag mismatch", func(t *testing.T) {
		s := liveSession()
		s.Players["p2"].IsHost = true
		assert.Error(t, s.Validate())
	})

	t.Run("game over keeps no live fields", func(t *testing.T) {
		s := liveSession()
		s.Status = StatusGameOver
		assert.Error(t, s.Validate(), "drawer and word must be cleared")
		s.CurrentDrawerID = ""
		s.CurrentWord = ""
		s.RoundResults = nil
		require.NoError(t, s.Validate())
	})

	t.Run("lobby", func(t *testing.T) {
		s := liveSession()
		s.Status = StatusLobby
		s.CurrentDrawerID = ""
		s.CurrentWord = ""
		s.CurrentRound = 0
		require.NoError(t, s.Validate())
	})
}
