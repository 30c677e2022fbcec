package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auto-reply match types.
const (
	MatchTypeExact    = "exact"
	MatchTypeContains = "contains"
)

// AutoReply represents a rule that selects an automated response for an
// inbound message. Keyword holds a comma-separated list of sub-keywords.
// A rule with an empty SessionID applies to every session of its owner.
type AutoReply struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	SessionID string             `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Keyword   string             `bson:"keyword" json:"keyword"`
	MatchType string             `bson:"matchType" json:"matchType"`
	Response  string             `bson:"response" json:"response"`
	ReplyType string             `bson:"replyType" json:"replyType"`
	MediaURL  string             `bson:"mediaUrl,omitempty" json:"mediaUrl,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
