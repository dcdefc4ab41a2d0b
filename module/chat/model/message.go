package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeneralRoomID is the shared public room. It is reserved: usernames are
// validated at registration so no canonical pair id can collide with it.
const GeneralRoomID = "general"

// Message is written once and never mutated. The JSON form doubles as the
// event payload on the relay topic and on the push channel.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderUsername string             `bson:"senderUsername" json:"senderUsername"`
	Text           string             `bson:"text" json:"text"`
	RoomID         string             `bson:"roomId" json:"roomId"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}
