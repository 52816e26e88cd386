package models

import "time"

// Move is one card selection, kept in the move log.
type Move struct {
	SessionID string    `json:"session_id" bson:"session_id"`
	Theme     string    `json:"theme" bson:"theme"`
	CardID    string    `json:"card_id" bson:"card_id"`
	Score     int       `json:"score" bson:"score"`
	Done      bool      `json:"done" bson:"done"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}
