// internal/store/memory.go
package store

import (
	"context"
	"sync"

	"github.com/artfulguesser/backend/internal/models"
)

// MemoryStore keeps session documents in process memory. It is the default
// store for single-node deployments and the one the tests run against.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	subs     map[string]map[int]func(*models.Session)
	nextSub  int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		subs:     make(map[string]map[int]func(*models.Session)),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrExists
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Read(ctx context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, patch Patch) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	patch.apply(s)
	snap, fns := s.Clone(), m.subscribersLocked(id)
	m.mu.Unlock()

	notify(snap, fns)
	return nil
}

func (m *MemoryStore) AppendGuess(ctx context.Context, id string, entry models.GuessEntry) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	s.Guesses = append(s.Guesses, entry)
	snap, fns := s.Clone(), m.subscribersLocked(id)
	m.mu.Unlock()

	notify(snap, fns)
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, id string, fn func(*models.Session)) (UnsubscribeFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return nil, ErrNotFound
	}
	if m.subs[id] == nil {
		m.subs[id] = make(map[int]func(*models.Session))
	}
	subID := m.nextSub
	m.nextSub++
	m.subs[id][subID] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[id], subID)
			m.mu.Unlock()
		})
	}, nil
}

// subscribersLocked snapshots the callback list so notifications run outside
// the store lock.
func (m *MemoryStore) subscribersLocked(id string) []func(*models.Session) {
	fns := make([]func(*models.Session), 0, len(m.subs[id]))
	for _, fn := range m.subs[id] {
		fns = append(fns, fn)
	}
	return fns
}

func notify(snap *models.Session, fns []func(*models.Session)) {
	for _, fn := range fns {
		fn(snap)
	}
}
