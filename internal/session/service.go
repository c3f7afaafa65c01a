// internal/session/service.go
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/artfulguesser/backend/internal/models"
	"github.com/artfulguesser/backend/internal/prompt"
	"github.com/artfulguesser/backend/internal/store"
)

// Archiver persists finished games. Optional; the engine works without one.
type Archiver interface {
	SaveResult(ctx context.Context, s *models.Session) error
}

// Service is the authoritative session engine. All client intents are routed
// through it, which serializes turn advancement, scoring and timer expiry in
// one process instead of letting every connected client mutate the shared
// document. The document store remains the single source of truth; the
// service computes partial updates from a read snapshot and writes them
// atomically.
type Service struct {
	Store     store.Store
	Generator prompt.Generator
	Archiver  Archiver
	Log       *logrus.Logger

	// Now is the service clock, swappable in tests.
	Now func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	locks  map[string]*sync.Mutex
}

// NewService wires the engine to a store and a prompt generator. Generator
// and Archiver may be nil; a nil generator means every word comes from the
// offline fallback list.
func NewService(st store.Store, gen prompt.Generator, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		Store:     st,
		Generator: gen,
		Log:       logger,
		Now:       time.Now,
		timers:    make(map[string]*time.Timer),
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockSession returns the per-session mutex, creating it on first use. Every
// engine operation holds it across its read-compute-write, so a round timer
// firing concurrently with a host intent cannot interleave between another
// operation's read and its write.
func (s *Service) lockSession(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// Close stops all pending round timers. Sessions themselves stay in the store.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// roundWord asks the generator for a new prompt, substituting an offline
// fallback word on any failure. Generator errors are logged and masked here;
// a round always gets a word.
func (s *Service) roundWord(ctx context.Context) string {
	if s.Generator == nil {
		return fallbackWord()
	}
	res, err := s.Generator.GeneratePrompt(ctx, prompt.DifficultyMedium)
	if err != nil || res.Prompt == "" {
		s.Log.WithError(err).Warn("prompt generator failed, using fallback word")
		return fallbackWord()
	}
	return res.Prompt
}

// normalizeGuess case-folds and trims for word comparison.
func normalizeGuess(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// scoreRound compares every guess of the current round against the word and
// computes the score deltas: +10 per correct guesser, +5 for the drawer when
// at least one guess was correct. Guess entries are deduplicated by player so
// replaying the computation over the same snapshot converges to the same
// result.
func scoreRound(snap *models.Session) (*models.RoundResults, map[string]store.PlayerPatch) {
	results := &models.RoundResults{
		Word:            snap.CurrentWord,
		DrawerID:        snap.CurrentDrawerID,
		CorrectGuessers: []string{},
	}
	patches := make(map[string]store.PlayerPatch)

	word := normalizeGuess(snap.CurrentWord)
	seen := make(map[string]bool)
	for _, g := range snap.Guesses {
		if seen[g.PlayerID] || g.PlayerID == snap.CurrentDrawerID {
			continue
		}
		seen[g.PlayerID] = true
		if word == "" || normalizeGuess(g.Guess) != word {
			continue
		}
		results.CorrectGuessers = append(results.CorrectGuessers, g.PlayerID)
		if p := snap.Player(g.PlayerID); p != nil {
			score := p.Score + 10
			patches[g.PlayerID] = store.PlayerPatch{Score: &score}
		}
	}

	if len(results.CorrectGuessers) > 0 {
		if drawer := snap.Player(snap.CurrentDrawerID); drawer != nil {
			score := drawer.Score + 5
			patches[snap.CurrentDrawerID] = store.PlayerPatch{Score: &score}
		}
	}
	return results, patches
}

func indexInOrder(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

func ptr[T any](v T) *T { return &v }
