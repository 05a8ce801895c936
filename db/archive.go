package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crash-game/models"
)

const roundsCollection = "rounds"

// RoundArchive stores the outcome of every crashed round. Nothing reads it
// back into the engine.
type RoundArchive struct {
	collection *mongo.Collection
}

func NewRoundArchive(database *mongo.Database) *RoundArchive {
	return &RoundArchive{collection: database.Collection(roundsCollection)}
}

// EnsureIndexes creates a unique index on roundId and a descending index on
// crashedAt for Recent.
func (a *RoundArchive) EnsureIndexes(ctx context.Context) error {
	_, err := a.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "roundId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "crashedAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create round indexes: %w", err)
	}
	return nil
}

func (a *RoundArchive) Record(ctx context.Context, rec models.RoundRecord) error {
	if _, err := a.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to archive round %s: %w", rec.RoundID, err)
	}
	return nil
}

// Recent returns up to limit rounds, newest first.
func (a *RoundArchive) Recent(ctx context.Context, limit int64) ([]models.RoundRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "crashedAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rounds: %w", err)
	}
	defer cursor.Close(ctx)

	rounds := []models.RoundRecord{}
	if err := cursor.All(ctx, &rounds); err != nil {
		return nil, fmt.Errorf("failed to decode rounds: %w", err)
	}
	return rounds, nil
}
