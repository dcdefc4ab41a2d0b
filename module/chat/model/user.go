package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is created at registration and immutable afterwards. Username is the
// key everything else references; it never changes.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
