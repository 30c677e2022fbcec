package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CampaignRepository implements the repositories.CampaignRepository interface
type CampaignRepository struct {
	collection *mongo.Collection
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *mongo.Database) repositories.CampaignRepository {
	return &CampaignRepository{
		collection: db.Collection("campaigns"),
	}
}

// FindByID finds a campaign by ID
func (r *CampaignRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign)
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// FindByUser finds all campaigns owned by a user, newest first
func (r *CampaignRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Campaign, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	return campaigns, nil
}

// FindDue finds pending or active campaigns whose scheduled time has
// passed, oldest first
func (r *CampaignRepository) FindDue(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	filter := bson.M{
		"status":        bson.M{"$in": []string{models.CampaignStatusPending, models.CampaignStatusActive}},
		"scheduledTime": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.M{"scheduledTime": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// Create creates a new campaign
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, campaign)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		campaign.ID = id
	}
	return nil
}

// Update replaces a campaign document
func (r *CampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": campaign.ID}, campaign)
	return err
}

// Delete deletes a campaign
func (r *CampaignRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// GetStatus reads only the status field of a campaign
func (r *CampaignRepository) GetStatus(ctx context.Context, id primitive.ObjectID) (string, error) {
	var doc struct {
		Status string `bson:"status"`
	}
	opts := options.FindOne().SetProjection(bson.M{"status": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if err != nil {
		return "", err
	}
	return doc.Status, nil
}

// UpdateStatus updates a campaign's status field
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	return err
}

// UpdateRecipientResult records one recipient's outcome with a targeted
// positional update and bumps the matching progress counter. This avoids
// rewriting the whole document once per message.
func (r *CampaignRepository) UpdateRecipientResult(ctx context.Context, id primitive.ObjectID, index int, status, errMsg string) error {
	set := bson.M{
		fmt.Sprintf("recipients.%d.status", index): status,
		"updatedAt": time.Now(),
	}
	if errMsg != "" {
		set[fmt.Sprintf("recipients.%d.error", index)] = errMsg
	}

	counter := "progress.sent"
	if status == models.RecipientStatusFailed {
		counter = "progress.failed"
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set, "$inc": bson.M{counter: 1}},
	)
	return err
}
