package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Friend request lifecycle. There is no rejected or cancelled state: a
// request is pending until accepted, and an accepted record is the
// friendship itself.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
)

// FriendRequest represents one directed request From -> To. At most one
// pending record may exist per ordered pair (enforced by a partial unique
// index). Accepted records are never deleted or reversed.
type FriendRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From      string             `bson:"from" json:"from"`
	To        string             `bson:"to" json:"to"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
