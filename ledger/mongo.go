package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type voteRecord struct {
	ViewerID    string `bson:"viewerId"`
	PollID      string `bson:"pollId"`
	OptionIndex int    `bson:"optionIndex"`
}

// MongoLedger stores one document per (viewer, poll) vote in the "votes"
// collection, guarded by a unique compound index.
type MongoLedger struct {
	coll *mongo.Collection
}

// NewMongoLedger binds the ledger to the given database and ensures the
// unique (viewerId, pollId) index exists.
func NewMongoLedger(ctx context.Context, db *mongo.Database) (*MongoLedger, error) {
	coll := db.Collection("votes")
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "viewerId", Value: 1}, {Key: "pollId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure votes index: %w", err)
	}
	return &MongoLedger{coll: coll}, nil
}

func (l *MongoLedger) Choice(ctx context.Context, viewerID, pollID string) (int, bool, error) {
	var rec voteRecord
	err := l.coll.FindOne(ctx, bson.M{"viewerId": viewerID, "pollId": pollID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup vote: %w", err)
	}
	return rec.OptionIndex, true, nil
}

func (l *MongoLedger) Record(ctx context.Context, viewerID, pollID string, optionIndex int) error {
	_, err := l.coll.InsertOne(ctx, voteRecord{
		ViewerID:    viewerID,
		PollID:      pollID,
		OptionIndex: optionIndex,
	})
	if mongo.IsDuplicateKeyError(err) {
		// The first record wins; the unique index keeps it that way.
		return nil
	}
	if err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	return nil
}
