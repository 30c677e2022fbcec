package mongodb

import (
	"context"
	"time"

	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository implements the repositories.SessionRepository interface
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *mongo.Database) repositories.SessionRepository {
	return &SessionRepository{
		collection: db.Collection("sessions"),
	}
}

// FindBySessionID finds a session by its logical session ID
func (r *SessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByUser finds all sessions owned by a user
func (r *SessionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		session.ID = id
	}
	return nil
}

// UpdateStatus updates a session's connection status
func (r *SessionRepository) UpdateStatus(ctx context.Context, sessionID, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	return err
}

// Delete deletes a session owned by the given user
func (r *SessionRepository) Delete(ctx context.Context, sessionID string, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"sessionId": sessionID, "userId": userID})
	return err
}
