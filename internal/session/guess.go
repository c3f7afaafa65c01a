// internal/session/guess.go
package session

import (
	"context"
	"fmt"

	"github.com/artfulguesser/backend/internal/models"
	"github.com/artfulguesser/backend/internal/store"
)

// SubmitGuess records one guess for the current round. The drawer and anyone
// who already guessed this round are rejected before any store write. The
// append itself is atomic at the store so concurrent guessers can't clobber
// each other's entries.
func (s *Service) SubmitGuess(ctx context.Context, sessionID, playerID, displayName, text string) error {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		return err
	}
	if !snap.RoundLive() {
		return ErrRoundNotActive
	}
	if playerID == snap.CurrentDrawerID {
		return ErrDrawerCannotGuess
	}
	if snap.HasGuessed(playerID) {
		return ErrAlreadyGuessed
	}

	entry := models.GuessEntry{
		PlayerID:    playerID,
		DisplayName: displayName,
		Guess:       text,
		Timestamp:   s.Now(),
	}
	if err := s.Store.AppendGuess(ctx, sessionID, entry); err != nil {
		return fmt.Errorf("submit guess: %w", err)
	}
	return nil
}

// UpdateDrawingSnapshot overwrites the shared canvas bitmap. Drawer only,
// drawing phase only; the blob is opaque to the engine.
func (s *Service) UpdateDrawingSnapshot(ctx context.Context, sessionID, actorID, dataURL string) error {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		return err
	}
	if snap.CurrentDrawerID != actorID {
		return ErrNotDrawer
	}
	if snap.Status != models.StatusDrawing {
		return ErrRoundNotActive
	}
	err = s.Store.Update(ctx, sessionID, store.Patch{
		CurrentDrawingDataURL: ptr(dataURL),
	})
	if err != nil {
		return fmt.Errorf("update drawing: %w", err)
	}
	return nil
}
