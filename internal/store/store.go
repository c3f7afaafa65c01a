// internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/artfulguesser/backend/internal/models"
)

var (
	// ErrNotFound is returned when no session document exists for the given id.
	ErrNotFound = errors.New("session not found")
	// ErrExists is returned by Create when the id is already taken.
	ErrExists = errors.New("session already exists")
)

// UnsubscribeFunc cancels a subscription. Safe to call more than once.
type UnsubscribeFunc func()

// Store is the session document boundary. One document per session, keyed by
// id. Every mutation after Create is a named partial-field update (Patch) or
// an atomic append (AppendGuess); implementations apply each call atomically
// with respect to other calls on the same document and fan the new snapshot
// out to subscribers.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Read(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, id string, patch Patch) error

	// AppendGuess appends one entry to the current round's guesses without a
	// read-modify-write of the whole array, so concurrent submitters can't
	// lose each other's entries.
	AppendGuess(ctx context.Context, id string, entry models.GuessEntry) error

	// Subscribe registers fn to receive a snapshot after every change to the
	// document. Each subscriber observes snapshots in write order.
	Subscribe(ctx context.Context, id string, fn func(*models.Session)) (UnsubscribeFunc, error)
}

// PlayerPatch updates individual fields of one player record.
type PlayerPatch struct {
	Score    *int
	IsHost   *bool
	IsActive *bool
}

// Patch is a partial-field update over a session document. Nil fields are
// left untouched. The whole patch is applied in one atomic write; it is the
// multi-field transition primitive the turn engine relies on.
type Patch struct {
	Status                    *models.Status
	HostID                    *string
	CurrentDrawerID           *string
	CurrentWord               *string
	CurrentDrawingDataURL     *string
	CurrentRound              *int
	CurrentPlayerIndexInOrder *int
	RoundStartTime            *time.Time

	// Guesses replaces the whole array; used only to clear it at turn advance.
	Guesses *[]models.GuessEntry

	RoundResults *models.RoundResults
	// ClearRoundResults deletes the roundResults field (the typed rendering of
	// the document store's field-delete primitive).
	ClearRoundResults bool

	// AppendPlayerOrder appends ids to the rotation; the order itself is
	// append-only and never rewritten.
	AppendPlayerOrder []string

	// PutPlayers inserts or overwrites whole player records.
	PutPlayers map[string]*models.Player

	// Players applies per-field updates to existing player records.
	Players map[string]PlayerPatch
}

// apply mutates s in place. Callers hold whatever exclusivity the
// implementation requires.
func (p Patch) apply(s *models.Session) {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.HostID != nil {
		s.HostID = *p.HostID
	}
	if p.CurrentDrawerID != nil {
		s.CurrentDrawerID = *p.CurrentDrawerID
	}
	if p.CurrentWord != nil {
		s.CurrentWord = *p.CurrentWord
	}
	if p.CurrentDrawingDataURL != nil {
		s.CurrentDrawingDataURL = *p.CurrentDrawingDataURL
	}
	if p.CurrentRound != nil {
		s.CurrentRound = *p.CurrentRound
	}
	if p.CurrentPlayerIndexInOrder != nil {
		s.CurrentPlayerIndexInOrder = *p.CurrentPlayerIndexInOrder
	}
	if p.RoundStartTime != nil {
		s.RoundStartTime = *p.RoundStartTime
	}
	if p.Guesses != nil {
		s.Guesses = append([]models.GuessEntry(nil), (*p.Guesses)...)
	}
	if p.ClearRoundResults {
		s.RoundResults = nil
	}
	if p.RoundResults != nil {
		rr := *p.RoundResults
		s.RoundResults = &rr
	}
	if len(p.AppendPlayerOrder) > 0 {
		s.PlayerOrder = append(s.PlayerOrder, p.AppendPlayerOrder...)
	}
	if len(p.PutPlayers) > 0 {
		if s.Players == nil {
			s.Players = make(map[string]*models.Player, len(p.PutPlayers))
		}
		for id, pl := range p.PutPlayers {
			cp := *pl
			s.Players[id] = &cp
		}
	}
	for id, pp := range p.Players {
		pl, ok := s.Players[id]
		if !ok {
			continue
		}
		if pp.Score != nil {
			pl.Score = *pp.Score
		}
		if pp.IsHost != nil {
			pl.IsHost = *pp.IsHost
		}
		if pp.IsActive != nil {
			pl.IsActive = *pp.IsActive
		}
	}
}
