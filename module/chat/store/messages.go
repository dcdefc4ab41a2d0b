package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chat-relay/module/chat/model"
	"chat-relay/tools/errs"
)

type mongoMessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(db *mongo.Database) MessageStore {
	return &mongoMessageStore{coll: db.Collection("messages")}
}

func (s *mongoMessageStore) Insert(ctx context.Context, m *model.Message) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	res, err := s.coll.InsertOne(ctx, m)
	if err != nil {
		return errs.ErrPersistence.WithDetail(err.Error())
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}

func (s *mongoMessageStore) ListByRoom(ctx context.Context, roomID string, limit int64) ([]model.Message, error) {
	filter := bson.M{"roomId": roomID}

	if limit <= 0 {
		cur, err := s.coll.Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
		if err != nil {
			return nil, errs.ErrPersistence.WithDetail(err.Error())
		}
		defer cur.Close(ctx)
		var msgs []model.Message
		if err := cur.All(ctx, &msgs); err != nil {
			return nil, errs.ErrPersistence.WithDetail(err.Error())
		}
		return msgs, nil
	}

	// Newest `limit` messages, then reversed so callers always see
	// ascending timestamps.
	cur, err := s.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	defer cur.Close(ctx)

	var msgs []model.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *mongoMessageStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return errs.ErrPersistence.WithDetail(err.Error())
	}
	return nil
}
