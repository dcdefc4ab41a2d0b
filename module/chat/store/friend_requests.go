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

type mongoFriendRequestStore struct {
	coll *mongo.Collection
}

func NewFriendRequestStore(db *mongo.Database) FriendRequestStore {
	return &mongoFriendRequestStore{coll: db.Collection("friend_requests")}
}

func (s *mongoFriendRequestStore) CreatePending(ctx context.Context, from, to string) (*model.FriendRequest, error) {
	now := time.Now().UTC()
	req := &model.FriendRequest{
		From:      from,
		To:        to,
		Status:    model.RequestStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// The partial unique index on pending (from, to) turns a concurrent
	// double-send into a duplicate key error instead of two records.
	res, err := s.coll.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.ErrDuplicateRequest
		}
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid
	}
	return req, nil
}

func (s *mongoFriendRequestStore) AcceptPending(ctx context.Context, from, to string) (*model.FriendRequest, error) {
	// Single conditional update: the pending-status filter and the status
	// flip happen in one step, so two racing accepts cannot both win.
	var req model.FriendRequest
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"from": from, "to": to, "status": model.RequestStatusPending},
		bson.M{"$set": bson.M{
			"status":    model.RequestStatusAccepted,
			"updatedAt": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	return &req, nil
}

func (s *mongoFriendRequestStore) ListPending(ctx context.Context, to string) ([]model.FriendRequest, error) {
	return s.list(ctx, bson.M{"to": to, "status": model.RequestStatusPending})
}

func (s *mongoFriendRequestStore) ListAccepted(ctx context.Context, user string) ([]model.FriendRequest, error) {
	return s.list(ctx, bson.M{
		"status": model.RequestStatusAccepted,
		"$or":    bson.A{bson.M{"from": user}, bson.M{"to": user}},
	})
}

func (s *mongoFriendRequestStore) list(ctx context.Context, filter bson.M) ([]model.FriendRequest, error) {
	cur, err := s.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	defer cur.Close(ctx)

	var reqs []model.FriendRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	return reqs, nil
}
