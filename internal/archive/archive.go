// internal/archive/archive.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artfulguesser/backend/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
    session_id    TEXT PRIMARY KEY,
    game_mode     TEXT NOT NULL,
    language      TEXT NOT NULL,
    max_rounds    INT NOT NULL,
    rounds_played INT NOT NULL,
    player_count  INT NOT NULL,
    scoreboard    JSONB NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    finished_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// scoreboardEntry is one row of the persisted final standings.
type scoreboardEntry struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	WasActive   bool   `json:"wasActive"`
}

// PostgresArchive stores finished games in Postgres. It sits off the request
// path; the session engine hands it final records asynchronously.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool against connString, pings it, and ensures the
// results table exists.
func Connect(ctx context.Context, connString string) (*PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure game_results table: %w", err)
	}
	return &PostgresArchive{pool: pool}, nil
}

// Close releases the connection pool.
func (a *PostgresArchive) Close() {
	a.pool.Close()
}

// SaveResult upserts the final scoreboard for one finished session.
func (a *PostgresArchive) SaveResult(ctx context.Context, s *models.Session) error {
	board := make([]scoreboardEntry, 0, len(s.Players))
	for _, id := range s.PlayerOrder {
		p := s.Player(id)
		if p == nil {
			continue
		}
		board = append(board, scoreboardEntry{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			WasActive:   p.IsActive,
		})
	}
	scoreboard, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshal scoreboard: %w", err)
	}

	q := `
		INSERT INTO game_results
		    (session_id, game_mode, language, max_rounds, rounds_played, player_count, scoreboard, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO UPDATE
		    SET rounds_played = EXCLUDED.rounds_played,
		        scoreboard    = EXCLUDED.scoreboard,
		        finished_at   = now()
	`
	_, err = a.pool.Exec(ctx, q,
		s.ID,
		s.Settings.GameMode,
		s.Settings.Language,
		s.MaxRounds,
		s.CurrentRound,
		len(s.Players),
		scoreboard,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game result %s: %w", s.ID, err)
	}
	return nil
}
