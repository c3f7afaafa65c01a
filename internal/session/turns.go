// internal/session/turns.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/artfulguesser/backend/internal/models"
	"github.com/artfulguesser/backend/internal/store"
)

// StartSession moves the session from lobby into the first drawing round.
// Host only. The first active entry of the rotation draws round 1.
func (s *Service) StartSession(ctx context.Context, sessionID, actorID string) error {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		return err
	}
	if snap.HostID != actorID {
		return ErrNotHost
	}
	if snap.Status != models.StatusLobby {
		return ErrAlreadyStarted
	}

	active := snap.ActivePlayerIDs()
	if len(active) == 0 {
		return ErrNoActivePlayers
	}
	drawer := active[0]
	idx := indexInOrder(snap.PlayerOrder, drawer)

	word := s.roundWord(ctx)
	now := s.Now()

	err = s.Store.Update(ctx, sessionID, store.Patch{
		Status:                    ptr(models.StatusDrawing),
		CurrentDrawerID:           ptr(drawer),
		CurrentWord:               ptr(word),
		CurrentDrawingDataURL:     ptr(""),
		CurrentRound:              ptr(1),
		CurrentPlayerIndexInOrder: ptr(idx),
		Guesses:                   ptr([]models.GuessEntry{}),
		RoundStartTime:            ptr(now),
		ClearRoundResults:         true,
	})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	s.scheduleRoundTimer(sessionID, time.Duration(snap.DrawTimeSeconds)*time.Second, now)
	s.Log.WithField("session", sessionID).WithField("drawer", drawer).Info("game started")
	return nil
}

// BeginGuessing is the drawer's "done drawing" signal: drawing moves to
// guessing with no round advance and no word change. Calling it again while
// already guessing is a no-op.
func (s *Service) BeginGuessing(ctx context.Context, sessionID, actorID string) error {
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
	if snap.Status == models.StatusGuessing {
		return nil
	}
	if snap.Status != models.StatusDrawing {
		return ErrRoundNotActive
	}
	err = s.Store.Update(ctx, sessionID, store.Patch{
		Status: ptr(models.StatusGuessing),
	})
	if err != nil {
		return fmt.Errorf("begin guessing: %w", err)
	}
	return nil
}

// EndRound scores the current round and moves the session to round-over.
// It is driven by the round timer on expiry; calling it when no round is
// live is a no-op, which makes a duplicate expiry harmless.
func (s *Service) EndRound(ctx context.Context, sessionID string) error {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return s.endRound(ctx, sessionID)
}

// endRound is EndRound's body; the caller holds the session lock.
func (s *Service) endRound(ctx context.Context, sessionID string) error {
	snap, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		return err
	}
	if !snap.RoundLive() {
		return nil
	}

	results, scorePatches := scoreRound(snap)
	err = s.Store.Update(ctx, sessionID, store.Patch{
		Status:       ptr(models.StatusRoundOver),
		RoundResults: results,
		Players:      scorePatches,
	})
	if err != nil {
		return fmt.Errorf("end round: %w", err)
	}

	s.cancelRoundTimer(sessionID)
	s.Log.WithField("session", sessionID).
		WithField("round", snap.CurrentRound).
		WithField("correct", len(results.CorrectGuessers)).
		Info("round over")
	return nil
}

// AdvanceTurn rotates to the next active drawer, advancing the round counter
// when the rotation wraps, and terminates the game past maxRounds. Host only.
// If the current round has not been scored yet (host advanced straight out of
// drawing/guessing, skipping round-over), the score deltas land in the same
// atomic update as the rotation. Calling it on a finished game is a no-op.
func (s *Service) AdvanceTurn(ctx context.Context, sessionID, actorID string) error {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		return err
	}
	if snap.HostID != actorID {
		return ErrNotHost
	}
	switch snap.Status {
	case models.StatusLobby, models.StatusStarting:
		return ErrNotStarted
	case models.StatusGameOver:
		return nil
	}

	// Score first if round-over was skipped; the deltas ride along with
	// whatever transition happens below.
	var scorePatches map[string]store.PlayerPatch
	if snap.RoundResults == nil && snap.RoundLive() {
		_, scorePatches = scoreRound(snap)
	}

	active := snap.ActivePlayerIDs()
	if len(active) == 0 {
		return s.finishGame(ctx, sessionID, scorePatches)
	}

	n := len(snap.PlayerOrder)
	prev := snap.CurrentPlayerIndexInOrder
	next := -1
	for step := 1; step <= n; step++ {
		idx := (prev + step) % n
		if snap.IsPlayerActive(snap.PlayerOrder[idx]) {
			next = idx
			break
		}
	}
	if next == -1 {
		// Unreachable given the active check above; treat as terminal anyway.
		return s.finishGame(ctx, sessionID, scorePatches)
	}

	round := snap.CurrentRound
	if len(active) == 1 {
		// A single remaining player starts a new round every turn.
		round++
	} else if next <= prev {
		// Rotation wrapped past the end of the order.
		round++
	}

	if round > snap.MaxRounds {
		return s.finishGame(ctx, sessionID, scorePatches)
	}

	drawer := snap.PlayerOrder[next]
	word := s.roundWord(ctx)
	now := s.Now()

	err = s.Store.Update(ctx, sessionID, store.Patch{
		Status:                    ptr(models.StatusDrawing),
		CurrentDrawerID:           ptr(drawer),
		CurrentWord:               ptr(word),
		CurrentDrawingDataURL:     ptr(""),
		CurrentRound:              ptr(round),
		CurrentPlayerIndexInOrder: ptr(next),
		Guesses:                   ptr([]models.GuessEntry{}),
		RoundStartTime:            ptr(now),
		ClearRoundResults:         true,
		Players:                   scorePatches,
	})
	if err != nil {
		return fmt.Errorf("advance turn: %w", err)
	}

	s.scheduleRoundTimer(sessionID, time.Duration(snap.DrawTimeSeconds)*time.Second, now)
	s.Log.WithField("session", sessionID).
		WithField("round", round).WithField("drawer", drawer).
		Info("turn advanced")
	return nil
}

// finishGame writes the terminal transition, clearing the live-round fields,
// and hands the final record to the archiver.
func (s *Service) finishGame(ctx context.Context, sessionID string, scorePatches map[string]store.PlayerPatch) error {
	err := s.Store.Update(ctx, sessionID, store.Patch{
		Status:                ptr(models.StatusGameOver),
		CurrentDrawerID:       ptr(""),
		CurrentWord:           ptr(""),
		CurrentDrawingDataURL: ptr(""),
		ClearRoundResults:     true,
		Players:               scorePatches,
	})
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	s.cancelRoundTimer(sessionID)
	s.Log.WithField("session", sessionID).Info("game over")

	if s.Archiver != nil {
		go s.archiveResult(sessionID)
	}
	return nil
}

// archiveResult persists the final record asynchronously, best effort.
func (s *Service) archiveResult(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	final, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		s.Log.WithError(err).WithField("session", sessionID).Warn("archive: read final state")
		return
	}
	if err := s.Archiver.SaveResult(ctx, final); err != nil {
		s.Log.WithError(err).WithField("session", sessionID).Warn("archive: save result")
	}
}
