package repositories

import (
	"context"
	"time"

	"github.com/zagel-app/zagel-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	UpdateStatus(ctx context.Context, sessionID, status string) error
	Delete(ctx context.Context, sessionID string, userID primitive.ObjectID) error
}

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Campaign, error)
	// FindDue returns campaigns that are pending or active with a
	// scheduled time at or before now, oldest first.
	FindDue(ctx context.Context, now time.Time) ([]models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// GetStatus reads only the current status of a campaign.
	GetStatus(ctx context.Context, id primitive.ObjectID) (string, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	// UpdateRecipientResult records one recipient's terminal outcome and
	// bumps the matching progress counter in a single targeted update.
	UpdateRecipientResult(ctx context.Context, id primitive.ObjectID, index int, status, errMsg string) error
}

// AutoReplyRepository defines the interface for auto-reply rule data access
type AutoReplyRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AutoReply, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.AutoReply, error)
	// FindActiveByUser returns the user's active rules in creation order.
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.AutoReply, error)
	Create(ctx context.Context, rule *models.AutoReply) error
	Update(ctx context.Context, rule *models.AutoReply) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
