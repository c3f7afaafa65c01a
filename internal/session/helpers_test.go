// internal/session/helpers_test.go
package session

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/artfulguesser/backend/internal/models"
	"github.com/artfulguesser/backend/internal/prompt"
	"github.com/artfulguesser/backend/internal/store"
)

// fakeGenerator returns a fixed word or a fixed error.
type fakeGenerator struct {
	word string
	err  error
}

func (f *fakeGenerator) GeneratePrompt(ctx context.Context, d prompt.Difficulty) (*prompt.PromptResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &prompt.PromptResult{Prompt: f.word}, nil
}

func (f *fakeGenerator) EvaluateGuess(ctx context.Context, desc, guess string) (*prompt.GuessEvaluation, error) {
	return &prompt.GuessEvaluation{IsCorrect: false}, f.err
}

func (f *fakeGenerator) GuessDrawing(ctx context.Context, uri string) (*prompt.DrawingGuess, error) {
	return &prompt.DrawingGuess{}, f.err
}

func newTestService(t *testing.T, gen prompt.Generator) *Service {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	svc := NewService(store.NewMemoryStore(), gen, logger)
	t.Cleanup(svc.Close)
	return svc
}

// setupSession creates a session with the given players; the first one hosts.
func setupSession(t *testing.T, svc *Service, playerIDs []string, maxRounds, drawTimeSeconds, maxPlayers int) string {
	t.Helper()
	ctx := context.Background()

	host := models.Player{ID: playerIDs[0], DisplayName: "player-" + playerIDs[0]}
	id, err := svc.CreateSession(ctx, host, maxRounds, drawTimeSeconds, maxPlayers)
	require.NoError(t, err)

	for _, pid := range playerIDs[1:] {
		p := models.Player{ID: pid, DisplayName: "player-" + pid}
		require.NoError(t, svc.JoinSession(ctx, id, p))
	}
	return id
}

func readSession(t *testing.T, svc *Service, id string) *models.Session {
	t.Helper()
	snap, err := svc.Store.Read(context.Background(), id)
	require.NoError(t, err)
	return snap
}
