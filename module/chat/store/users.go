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

type mongoUserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) UserStore {
	return &mongoUserStore{coll: db.Collection("users")}
}

func (s *mongoUserStore) Create(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.ErrUsernameTaken
		}
		return errs.ErrPersistence.WithDetail(err.Error())
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *mongoUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	return &u, nil
}

func (s *mongoUserStore) ListAll(ctx context.Context, exclude string) ([]model.User, error) {
	filter := bson.M{}
	if exclude != "" {
		filter["username"] = bson.M{"$ne": exclude}
	}
	cur, err := s.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	defer cur.Close(ctx)

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}
	return users, nil
}
