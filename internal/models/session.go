package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session connection statuses.
const (
	SessionStatusConnected    = "connected"
	SessionStatusDisconnected = "disconnected"
)

// Session represents a messaging channel binding owned by a user.
// SessionID is the logical key the channel manager and campaigns use.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	SessionID string             `bson:"sessionId" json:"sessionId"`
	Name      string             `bson:"name" json:"name"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
