// internal/session/lifecycle.go
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/artfulguesser/backend/internal/models"
	"github.com/artfulguesser/backend/internal/store"
)

const (
	defaultGameMode = "classic"
	defaultLanguage = "tr"
)

// CreateSession allocates a fresh session in lobby state with the given
// player as host and returns its id. Store write failures propagate; nothing
// is retried here.
func (s *Service) CreateSession(ctx context.Context, host models.Player, maxRounds, drawTimeSeconds, maxPlayers int) (string, error) {
	id := uuid.NewString()

	host.Score = 0
	host.IsHost = true
	host.IsActive = true

	sess := &models.Session{
		ID:     id,
		Status: models.StatusLobby,
		Players: map[string]*models.Player{
			host.ID: &host,
		},
		HostID:          host.ID,
		Guesses:         []models.GuessEntry{},
		CurrentRound:    0,
		MaxRounds:       maxRounds,
		DrawTimeSeconds: drawTimeSeconds,
		CreatedAt:       s.Now(),
		Settings: models.Settings{
			MaxPlayers: maxPlayers,
			GameMode:   defaultGameMode,
			Language:   defaultLanguage,
		},
		PlayerOrder:               []string{host.ID},
		CurrentPlayerIndexInOrder: 0,
	}

	if err := s.Store.Create(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.Log.WithField("session", id).WithField("host", host.ID).Info("session created")
	return id, nil
}

// JoinSession adds a player to the session. A player id already present in
// the record is treated as a rejoin: only its isActive flag flips back on,
// regardless of session status, any number of times. Brand-new players are
// only admitted in the lobby and while there is capacity; they are appended
// to both the player map and the rotation order.
func (s *Service) JoinSession(ctx context.Context, sessionID string, p models.Player) error {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		return err
	}

	if snap.Player(p.ID) != nil {
		// Rejoin keeps score and rotation slot untouched.
		err := s.Store.Update(ctx, sessionID, store.Patch{
			Players: map[string]store.PlayerPatch{
				p.ID: {IsActive: ptr(true)},
			},
		})
		if err != nil {
			return fmt.Errorf("rejoin session: %w", err)
		}
		return nil
	}

	if len(snap.ActivePlayerIDs()) >= snap.Settings.MaxPlayers {
		return ErrSessionFull
	}
	if snap.Status != models.StatusLobby {
		return ErrAlreadyStarted
	}

	p.Score = 0
	p.IsHost = false
	p.IsActive = true

	err = s.Store.Update(ctx, sessionID, store.Patch{
		PutPlayers:        map[string]*models.Player{p.ID: &p},
		AppendPlayerOrder: []string{p.ID},
	})
	if err != nil {
		return fmt.Errorf("join session: %w", err)
	}
	s.Log.WithField("session", sessionID).WithField("player", p.ID).Info("player joined")
	return nil
}

// LeaveSession marks the player inactive; the record and its rotation slot
// are kept so a rejoin restores score and turn position.
func (s *Service) LeaveSession(ctx context.Context, sessionID, playerID string) error {
	return s.SetPlayerActive(ctx, sessionID, playerID, false)
}

// SetPlayerActive flips a player's isActive flag. Deactivating the current
// host migrates hostship to the first still-active entry of the rotation in
// the same atomic update, so no snapshot ever shows zero hosts. If nobody is
// left to take over, the session falls back to the lobby instead of ending.
func (s *Service) SetPlayerActive(ctx context.Context, sessionID, playerID string, active bool) error {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		return err
	}
	if snap.Player(playerID) == nil {
		return ErrNotFound
	}

	patch := store.Patch{
		Players: map[string]store.PlayerPatch{
			playerID: {IsActive: ptr(active)},
		},
	}

	backToLobby := false
	if !active && snap.HostID == playerID {
		newHost := ""
		for _, id := range snap.PlayerOrder {
			if id != playerID && snap.IsPlayerActive(id) {
				newHost = id
				break
			}
		}
		if newHost != "" {
			patch.HostID = ptr(newHost)
			patch.Players[playerID] = store.PlayerPatch{IsActive: ptr(false), IsHost: ptr(false)}
			patch.Players[newHost] = store.PlayerPatch{IsHost: ptr(true)}
			s.Log.WithField("session", sessionID).
				WithField("from", playerID).WithField("to", newHost).
				Info("host migrated")
		} else if snap.Status != models.StatusGameOver {
			// The game cannot continue without a host; park it in the lobby
			// rather than ending it.
			patch.Status = ptr(models.StatusLobby)
			patch.CurrentDrawerID = ptr("")
			patch.CurrentWord = ptr("")
			patch.CurrentDrawingDataURL = ptr("")
			patch.ClearRoundResults = true
			backToLobby = true
		}
	}

	if err := s.Store.Update(ctx, sessionID, patch); err != nil {
		return fmt.Errorf("update player status: %w", err)
	}
	if backToLobby {
		s.cancelRoundTimer(sessionID)
	}
	return nil
}
