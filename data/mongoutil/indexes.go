package mongoutil

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the stores rely on. The partial unique
// index on pending friend requests is what makes the duplicate-request
// check race-free: two concurrent inserts for the same (from, to) pair
// cannot both succeed.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "users.username index")
	}

	_, err = db.Collection("messages").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "timestamp", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "messages indexes")
	}

	_, err = db.Collection("friend_requests").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: "pending"}}),
		},
		{Keys: bson.D{{Key: "to", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "from", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "to", Value: 1}}},
	})
	return errors.Wrap(err, "friend_requests indexes")
}
