package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign statuses.
const (
	CampaignStatusPending   = "pending"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
	CampaignStatusStopped   = "stopped"
)

// Recipient statuses.
const (
	RecipientStatusPending = "pending"
	RecipientStatusSent    = "sent"
	RecipientStatusFailed  = "failed"
)

// Supported message types.
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeAudio    = "audio"
	MessageTypeVideo    = "video"
	MessageTypeDocument = "document"
)

// Recipient represents one target number and its delivery outcome within a campaign
type Recipient struct {
	Number string `bson:"number" json:"number"`
	Status string `bson:"status" json:"status"`
	Error  string `bson:"error,omitempty" json:"error,omitempty"`
}

// Progress holds the aggregate delivery counters of a campaign
type Progress struct {
	Sent   int `bson:"sent" json:"sent"`
	Failed int `bson:"failed" json:"failed"`
	Total  int `bson:"total" json:"total"`
}

// Campaign represents a scheduled bulk-message campaign
type Campaign struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	SessionID     string             `bson:"sessionId" json:"sessionId"`
	Title         string             `bson:"title" json:"title"`
	MessageType   string             `bson:"messageType" json:"messageType"`
	Content       string             `bson:"content" json:"content"`
	Caption       string             `bson:"caption,omitempty" json:"caption,omitempty"`
	Recipients    []Recipient        `bson:"recipients" json:"recipients"`
	ScheduledTime time.Time          `bson:"scheduledTime" json:"scheduledTime"`
	MinDelay      int                `bson:"minDelay" json:"minDelay"`
	MaxDelay      int                `bson:"maxDelay" json:"maxDelay"`
	Status        string             `bson:"status" json:"status"`
	Progress      Progress           `bson:"progress" json:"progress"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecipientTerminal reports whether a recipient status is terminal
func RecipientTerminal(status string) bool {
	return status == RecipientStatusSent || status == RecipientStatusFailed
}

// Done reports whether every recipient has reached a terminal status
func (c *Campaign) Done() bool {
	for i := range c.Recipients {
		if !RecipientTerminal(c.Recipients[i].Status) {
			return false
		}
	}
	return true
}
