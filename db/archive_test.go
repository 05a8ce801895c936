package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"crash-game/models"
)

func sampleRecord(id string, crashedAt time.Time) models.RoundRecord {
	return models.RoundRecord{
		RoundID:    id,
		CrashPoint: 6,
		Multiplier: 1.3499,
		StartedAt:  crashedAt.Add(-6 * time.Second),
		CrashedAt:  crashedAt,
		Players: []models.PlayerResult{
			{UserID: "u1", UserName: "alice", Bet: 100, Status: models.PlayerLost},
		},
	}
}

func TestRoundArchive(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("record inserts round", func(mt *mtest.T) {
		archive := &RoundArchive{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := archive.Record(context.Background(), sampleRecord("r1", time.Now())); err != nil {
			mt.Fatalf("Record: %v", err)
		}
	})

	mt.Run("record surfaces duplicate round", func(mt *mtest.T) {
		archive := &RoundArchive{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := archive.Record(context.Background(), sampleRecord("r1", time.Now()))
		var we mongo.WriteException
		if !errors.As(err, &we) || len(we.WriteErrors) != 1 || we.WriteErrors[0].Code != 11000 {
			mt.Fatalf("Record error = %v, want duplicate key write exception", err)
		}
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		archive := &RoundArchive{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := archive.EnsureIndexes(context.Background()); err != nil {
			mt.Fatalf("EnsureIndexes: %v", err)
		}
	})

	mt.Run("recent decodes rounds", func(mt *mtest.T) {
		archive := &RoundArchive{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		crashed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		doc := func(id string, at time.Time) bson.D {
			return bson.D{
				{Key: "roundId", Value: id},
				{Key: "crashPoint", Value: 6.0},
				{Key: "multiplier", Value: 1.35},
				{Key: "startedAt", Value: primitive.NewDateTimeFromTime(at.Add(-6 * time.Second))},
				{Key: "crashedAt", Value: primitive.NewDateTimeFromTime(at)},
				{Key: "players", Value: bson.A{
					bson.D{{Key: "userId", Value: "u1"}, {Key: "status", Value: "lost"}, {Key: "bet", Value: 100.0}},
				}},
			}
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			doc("r2", crashed),
			doc("r1", crashed.Add(-time.Minute)),
		))

		rounds, err := archive.Recent(context.Background(), 2)
		if err != nil {
			mt.Fatalf("Recent: %v", err)
		}
		if len(rounds) != 2 || rounds[0].RoundID != "r2" || rounds[1].RoundID != "r1" {
			mt.Fatalf("rounds = %+v", rounds)
		}
		if !rounds[0].CrashedAt.Equal(crashed) {
			mt.Fatalf("crashedAt = %v, want %v", rounds[0].CrashedAt, crashed)
		}
		if p := rounds[0].Players; len(p) != 1 || p[0].Status != models.PlayerLost || p[0].Bet != 100 {
			mt.Fatalf("players = %+v", p)
		}
	})

	mt.Run("recent surfaces command errors", func(mt *mtest.T) {
		archive := &RoundArchive{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad sort",
		}))

		if _, err := archive.Recent(context.Background(), 5); err == nil {
			mt.Fatal("expected error")
		}
	})
}

func TestConnectDBRejectsEmptyURI(t *testing.T) {
	if _, err := ConnectDB(context.Background(), ""); err == nil {
		t.Fatal("empty uri accepted")
	}
}
