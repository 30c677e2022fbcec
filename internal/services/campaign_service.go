package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/internal/repositories"
	"github.com/zagel-app/zagel-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateCampaignRequest represents the payload for creating a campaign
type CreateCampaignRequest struct {
	SessionID     string    `json:"sessionId" binding:"required"`
	Title         string    `json:"title" binding:"required"`
	MessageType   string    `json:"messageType" binding:"required"`
	Content       string    `json:"content" binding:"required"`
	Caption       string    `json:"caption"`
	Recipients    []string  `json:"recipients" binding:"required"`
	ScheduledTime time.Time `json:"scheduledTime" binding:"required"`
	MinDelay      int       `json:"minDelay"`
	MaxDelay      int       `json:"maxDelay"`
}

// CampaignService manages scheduled campaign records and their status
// machine. The scheduler only ever reads the status this service writes.
type CampaignService struct {
	campaigns repositories.CampaignRepository
	log       zerolog.Logger
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(campaigns repositories.CampaignRepository, log zerolog.Logger) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		log:       log.With().Str("component", "campaigns").Logger(),
	}
}

// Create normalizes and deduplicates the recipient list and persists a
// new pending campaign
func (s *CampaignService) Create(ctx context.Context, userID primitive.ObjectID, req *CreateCampaignRequest) (*models.Campaign, error) {
	numbers := utils.NormalizeNumbers(req.Recipients)
	if len(numbers) == 0 {
		return nil, ErrNoValidRecipients
	}

	recipients := make([]models.Recipient, len(numbers))
	for i, n := range numbers {
		recipients[i] = models.Recipient{Number: n, Status: models.RecipientStatusPending}
	}

	campaign := &models.Campaign{
		UserID:        userID,
		SessionID:     req.SessionID,
		Title:         req.Title,
		MessageType:   req.MessageType,
		Content:       req.Content,
		Caption:       req.Caption,
		Recipients:    recipients,
		ScheduledTime: req.ScheduledTime,
		MinDelay:      req.MinDelay,
		MaxDelay:      req.MaxDelay,
		Status:        models.CampaignStatusPending,
		Progress:      models.Progress{Total: len(recipients)},
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	s.log.Info().Str("campaign", campaign.ID.Hex()).Int("recipients", len(recipients)).Msg("campaign created")
	return campaign, nil
}

// GetByID returns a campaign owned by the user
func (s *CampaignService) GetByID(ctx context.Context, userID, id primitive.ObjectID) (*models.Campaign, error) {
	campaign, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if campaign.UserID != userID {
		return nil, ErrNotOwner
	}
	return campaign, nil
}

// ListByUser returns all campaigns owned by the user
func (s *CampaignService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Campaign, error) {
	return s.campaigns.FindByUser(ctx, userID)
}

// Update edits a non-terminal campaign. A new recipient list resets the
// progress counters.
func (s *CampaignService) Update(ctx context.Context, userID, id primitive.ObjectID, req *CreateCampaignRequest) (*models.Campaign, error) {
	campaign, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == models.CampaignStatusCompleted || campaign.Status == models.CampaignStatusStopped {
		return nil, ErrInvalidTransition
	}

	numbers := utils.NormalizeNumbers(req.Recipients)
	if len(numbers) == 0 {
		return nil, ErrNoValidRecipients
	}
	recipients := make([]models.Recipient, len(numbers))
	for i, n := range numbers {
		recipients[i] = models.Recipient{Number: n, Status: models.RecipientStatusPending}
	}

	campaign.SessionID = req.SessionID
	campaign.Title = req.Title
	campaign.MessageType = req.MessageType
	campaign.Content = req.Content
	campaign.Caption = req.Caption
	campaign.Recipients = recipients
	campaign.ScheduledTime = req.ScheduledTime
	campaign.MinDelay = req.MinDelay
	campaign.MaxDelay = req.MaxDelay
	campaign.Progress = models.Progress{Total: len(recipients)}

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}
	return campaign, nil
}

// Delete removes a campaign owned by the user
func (s *CampaignService) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return err
	}
	return s.campaigns.Delete(ctx, id)
}

// StartNow moves a pending campaign to active and pulls its scheduled
// time to the present so the next pass picks it up
func (s *CampaignService) StartNow(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.transition(ctx, userID, id, models.CampaignStatusActive, models.CampaignStatusPending)
}

// Pause suspends an active campaign
func (s *CampaignService) Pause(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.transition(ctx, userID, id, models.CampaignStatusPaused, models.CampaignStatusActive)
}

// Resume reactivates a paused campaign
func (s *CampaignService) Resume(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.transition(ctx, userID, id, models.CampaignStatusActive, models.CampaignStatusPaused)
}

// StopCampaign terminally halts a campaign from any non-terminal state
func (s *CampaignService) StopCampaign(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.transition(ctx, userID, id, models.CampaignStatusStopped,
		models.CampaignStatusPending, models.CampaignStatusActive, models.CampaignStatusPaused)
}

func (s *CampaignService) transition(ctx context.Context, userID, id primitive.ObjectID, to string, from ...string) error {
	campaign, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	allowed := false
	for _, f := range from {
		if campaign.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidTransition
	}

	if to == models.CampaignStatusActive && campaign.Status == models.CampaignStatusPending {
		campaign.Status = to
		campaign.ScheduledTime = time.Now()
		return s.campaigns.Update(ctx, campaign)
	}
	return s.campaigns.UpdateStatus(ctx, id, to)
}
