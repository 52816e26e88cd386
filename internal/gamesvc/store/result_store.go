package store

import (
	"context"
	"fmt"

	"github.com/avvvet/memory-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createResultsTable = `
	CREATE TABLE IF NOT EXISTS game_results (
		id          BIGSERIAL PRIMARY KEY,
		session_id  TEXT NOT NULL,
		theme       TEXT NOT NULL,
		pairs       INT NOT NULL,
		attempts    INT NOT NULL,
		score       INT NOT NULL,
		accuracy    NUMERIC(5,2) NOT NULL,
		duration_ms BIGINT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

type ResultStore struct {
	db *pgxpool.Pool
}

func NewResultStore(db *pgxpool.Pool) *ResultStore {
	return &ResultStore{db: db}
}

// Migrate creates the results table if it does not exist yet.
func (s *ResultStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createResultsTable); err != nil {
		return fmt.Errorf("failed to create game_results: %w", err)
	}
	return nil
}

// Save inserts a completed game and fills in its id and creation time.
func (s *ResultStore) Save(ctx context.Context, r *models.GameResult) error {
	query := `
		INSERT INTO game_results (session_id, theme, pairs, attempts, score, accuracy, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := s.db.QueryRow(ctx, query,
		r.SessionID,
		r.Theme,
		r.Pairs,
		r.Attempts,
		r.Score,
		r.Accuracy,
		r.DurationMs,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save game result: %w", err)
	}

	return nil
}

// Top returns the best results by score, optionally for one theme only.
func (s *ResultStore) Top(ctx context.Context, theme string, limit int) ([]*models.GameResult, error) {
	query := `
		SELECT id, session_id, theme, pairs, attempts, score, accuracy, duration_ms, created_at
		FROM game_results
		WHERE $1 = '' OR theme = $1
		ORDER BY score DESC, duration_ms ASC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, theme, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list game results: %w", err)
	}
	defer rows.Close()

	results := []*models.GameResult{}
	for rows.Next() {
		var r models.GameResult
		err := rows.Scan(
			&r.ID,
			&r.SessionID,
			&r.Theme,
			&r.Pairs,
			&r.Attempts,
			&r.Score,
			&r.Accuracy,
			&r.DurationMs,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, &r)
	}

	return results, rows.Err()
}
