// internal/store/memory_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artfulguesser/backend/internal/models"
)

func newDoc(id string) *models.Session {
	return &models.Session{
		ID:     id,
		Status: models.StatusLobby,
		Players: map[string]*models.Player{
			"p1": {ID: "p1", DisplayName: "player-p1", IsHost: true, IsActive: true},
		},
		HostID:          "p1",
		MaxRounds:       3,
		DrawTimeSeconds: 60,
		CreatedAt:       time.Now(),
		Settings:        models.Settings{MaxPlayers: 8, GameMode: "classic", Language: "tr"},
		PlayerOrder:     []string{"p1"},
	}
}

func TestMemoryStoreCreateRead(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Create(ctx, newDoc("s1")))
	assert.ErrorIs(t, st.Create(ctx, newDoc("s1")), ErrExists)

	snap, err := st.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", snap.ID)
	assert.Equal(t, models.StatusLobby, snap.Status)

	// Reads hand out copies, not the stored document.
	snap.Status = models.StatusDrawing
	snap.Players["p1"].Score = 99
	again, err := st.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusLobby, again.Status)
	assert.Equal(t, 0, again.Players["p1"].Score)
}

func TestMemoryStoreUpdate(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newDoc("s1")))

	assert.ErrorIs(t, st.Update(ctx, "missing", Patch{}), ErrNotFound)

	status := models.StatusDrawing
	drawer := "p1"
	word := "kedi"
	round := 1
	idx := 0
	start := time.Now()
	score := 10
	active := true
	p2 := &models.Player{ID: "p2", DisplayName: "player-p2", IsActive: true}

	require.NoError(t, st.Update(ctx, "s1", Patch{
		Status:                    &status,
		CurrentDrawerID:           &drawer,
		CurrentWord:               &word,
		CurrentRound:              &round,
		CurrentPlayerIndexInOrder: &idx,
		RoundStartTime:            &start,
		PutPlayers:                map[string]*models.Player{"p2": p2},
		AppendPlayerOrder:         []string{"p2"},
		Players: map[string]PlayerPatch{
			"p1": {Score: &score, IsActive: &active},
		},
	}))

	snap, err := st.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDrawing, snap.Status)
	assert.Equal(t, "kedi", snap.CurrentWord)
	assert.Equal(t, []string{"p1", "p2"}, snap.PlayerOrder)
	assert.Equal(t, 10, snap.Players["p1"].Score)
	assert.Equal(t, "player-p2", snap.Players["p2"].DisplayName)
	assert.True(t, snap.RoundStartTime.Equal(start))

	// A PlayerPatch for an id that never joined is dropped, not inserted.
	ghost := 5
	require.NoError(t, st.Update(ctx, "s1", Patch{
		Players: map[string]PlayerPatch{"ghost": {Score: &ghost}},
	}))
	snap, err = st.Read(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, snap.Players, "ghost")
}

func TestMemoryStoreClearRoundResults(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newDoc("s1")))

	rr := &models.RoundResults{Word: "kedi", DrawerID: "p1", CorrectGuessers: []string{"p2"}}
	require.NoError(t, st.Update(ctx, "s1", Patch{RoundResults: rr}))

	snap, err := st.Read(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, snap.RoundResults)
	assert.Equal(t, "kedi", snap.RoundResults.Word)

	require.NoError(t, st.Update(ctx, "s1", Patch{ClearRoundResults: true}))
	snap, err = st.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, snap.RoundResults)
}

func TestMemoryStoreAppendGuess(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newDoc("s1")))

	assert.ErrorIs(t, st.AppendGuess(ctx, "missing", models.GuessEntry{}), ErrNotFound)

	e1 := models.GuessEntry{PlayerID: "p2", DisplayName: "player-p2", Guess: "kedi", Timestamp: time.Now()}
	e2 := models.GuessEntry{PlayerID: "p3", DisplayName: "player-p3", Guess: "köpek", Timestamp: time.Now()}
	require.NoError(t, st.AppendGuess(ctx, "s1", e1))
	require.NoError(t, st.AppendGuess(ctx, "s1", e2))

	snap, err := st.Read(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Guesses, 2)
	assert.Equal(t, "p2", snap.Guesses[0].PlayerID)
	assert.Equal(t, "köpek", snap.Guesses[1].Guess)

	// Clearing through a patch replaces the whole array.
	empty := []models.GuessEntry{}
	require.NoError(t, st.Update(ctx, "s1", Patch{Guesses: &empty}))
	snap, err = st.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, snap.Guesses)
}

func TestMemoryStoreSubscribe(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newDoc("s1")))

	got := make(chan *models.Session, 8)
	unsub, err := st.Subscribe(ctx, "s1", func(s *models.Session) {
		got <- s
	})
	require.NoError(t, err)

	word := "kedi"
	require.NoError(t, st.Update(ctx, "s1", Patch{CurrentWord: &word}))

	select {
	case snap := <-got:
		assert.Equal(t, "kedi", snap.CurrentWord)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	unsub()
	unsub() // safe to call twice

	other := "ev"
	require.NoError(t, st.Update(ctx, "s1", Patch{CurrentWord: &other}))
	select {
	case snap := <-got:
		t.Fatalf("unexpected snapshot after unsubscribe: %q", snap.CurrentWord)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStoreSubscribeUnknownSession(t *testing.T) {
	st := NewMemoryStore()
	_, err := st.Subscribe(context.Background(), "missing", func(*models.Session) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSubscriberSnapshotsAreIsolated(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newDoc("s1")))

	got := make(chan *models.Session, 1)
	unsub, err := st.Subscribe(ctx, "s1", func(s *models.Session) {
		got <- s
	})
	require.NoError(t, err)
	defer unsub()

	word := "kedi"
	require.NoError(t, st.Update(ctx, "s1", Patch{CurrentWord: &word}))

	snap := <-got
	snap.Players["p1"].Score = 42

	stored, err := st.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Players["p1"].Score)
}
