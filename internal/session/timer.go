// internal/session/timer.go
package session

import (
	"context"
	"time"
)

// scheduleRoundTimer arms the server-side expiry for a freshly started round,
// replacing any timer still pending for the session. startedAt is the round
// anchor the timer belongs to; a stale timer whose round has already been
// replaced does nothing when it fires. When a current timer fires, the round
// is scored and moved to round-over by this process; clients only derive the
// visible countdown from roundStartTime and drawTimeSeconds.
func (s *Service) scheduleRoundTimer(sessionID string, d time.Duration, startedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	s.timers[sessionID] = time.AfterFunc(d, func() {
		s.expireRound(sessionID, startedAt)
	})
}

// cancelRoundTimer stops the pending expiry, if any. Called on round end,
// game over and lobby fallback.
func (s *Service) cancelRoundTimer(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

func (s *Service) expireRound(sessionID string, startedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The anchor check and the round end must happen under one lock hold: a
	// turn advance slipping in between would leave this expiry stamping the
	// old round's results onto the fresh one.
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.Store.Read(ctx, sessionID)
	if err != nil {
		s.Log.WithError(err).WithField("session", sessionID).Warn("round expiry: read failed")
		return
	}
	if !snap.RoundStartTime.Equal(startedAt) {
		// The round this timer was armed for is gone.
		return
	}

	// endRound also no-ops if the host already forced the transition.
	if err := s.endRound(ctx, sessionID); err != nil {
		s.Log.WithError(err).WithField("session", sessionID).Warn("round expiry failed")
	}
}
