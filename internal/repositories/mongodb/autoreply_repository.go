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

// AutoReplyRepository implements the repositories.AutoReplyRepository interface
type AutoReplyRepository struct {
	collection *mongo.Collection
}

// NewAutoReplyRepository creates a new AutoReplyRepository
func NewAutoReplyRepository(db *mongo.Database) repositories.AutoReplyRepository {
	return &AutoReplyRepository{
		collection: db.Collection("autoreplies"),
	}
}

// FindByID finds a rule by ID
func (r *AutoReplyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AutoReply, error) {
	var rule models.AutoReply
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// FindByUser finds all rules owned by a user in creation order
func (r *AutoReplyRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.AutoReply, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// FindActiveByUser finds the user's active rules in creation order
func (r *AutoReplyRepository) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.AutoReply, error) {
	return r.find(ctx, bson.M{"userId": userID, "isActive": true})
}

func (r *AutoReplyRepository) find(ctx context.Context, filter bson.M) ([]models.AutoReply, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []models.AutoReply
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []models.AutoReply{}
	}
	return rules, nil
}

// Create creates a new rule
func (r *AutoReplyRepository) Create(ctx context.Context, rule *models.AutoReply) error {
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		rule.ID = id
	}
	return nil
}

// Update replaces a rule document
func (r *AutoReplyRepository) Update(ctx context.Context, rule *models.AutoReply) error {
	rule.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": rule.ID}, rule)
	return err
}

// Delete deletes a rule
func (r *AutoReplyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
