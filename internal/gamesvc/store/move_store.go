package store

import (
	"context"
	"fmt"

	"github.com/avvvet/memory-services/internal/gamesvc/models"
	"go.mongodb.org/mongo-driver/mongo"
)

const MovesCollection = "moves"

type MoveStore struct {
	coll *mongo.Collection
}

func NewMoveStore(db *mongo.Database) *MoveStore {
	return &MoveStore{coll: db.Collection(MovesCollection)}
}

func (s *MoveStore) LogMove(ctx context.Context, m models.Move) error {
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to log move: %w", err)
	}
	return nil
}
