package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameResult is the final record of a completed game.
type GameResult struct {
	ID         int64           `json:"id"`         // Primary key
	SessionID  string          `json:"session_id"` // Session the game was played in
	Theme      string          `json:"theme"`
	Pairs      int             `json:"pairs"`
	Attempts   int             `json:"attempts"` // Second-card selections
	Score      int             `json:"score"`
	Accuracy   decimal.Decimal `json:"accuracy"` // Matched pairs per attempt, in percent
	DurationMs int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Accuracy returns pairs/attempts as a percentage rounded to two places.
func Accuracy(pairs, attempts int) decimal.Decimal {
	if attempts == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(pairs)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(attempts)), 2)
}
