package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zagel-app/zagel-backend/internal/models"
)

func validCreateRequest() *CreateCampaignRequest {
	return &CreateCampaignRequest{
		SessionID:     "s1",
		Title:         "launch",
		MessageType:   models.MessageTypeText,
		Content:       "hello",
		Recipients:    []string{"01012345678", "0101-234-5678", "201098765432", "junk"},
		ScheduledTime: time.Now().Add(time.Hour),
		MinDelay:      3,
		MaxDelay:      7,
	}
}

func TestCampaignCreateNormalizesRecipients(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := NewCampaignService(repo, testLogger())
	userID := primitive.NewObjectID()

	c, err := svc.Create(context.Background(), userID, validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Status != models.CampaignStatusPending {
		t.Fatalf("new campaigns must be pending, got %s", c.Status)
	}
	want := []string{"201012345678", "201098765432"}
	if len(c.Recipients) != len(want) {
		t.Fatalf("expected %d recipients after normalization, got %d", len(want), len(c.Recipients))
	}
	for i, r := range c.Recipients {
		if r.Number != want[i] || r.Status != models.RecipientStatusPending {
			t.Fatalf("recipient %d: %+v", i, r)
		}
	}
	if c.Progress.Total != 2 || c.Progress.Sent != 0 || c.Progress.Failed != 0 {
		t.Fatalf("unexpected progress: %+v", c.Progress)
	}
}

func TestCampaignCreateRejectsEmptyList(t *testing.T) {
	svc := NewCampaignService(newFakeCampaignRepo(), testLogger())
	req := validCreateRequest()
	req.Recipients = []string{"junk", "123"}

	if _, err := svc.Create(context.Background(), primitive.NewObjectID(), req); !errors.Is(err, ErrNoValidRecipients) {
		t.Fatalf("expected ErrNoValidRecipients, got %v", err)
	}
}

func TestCampaignOwnership(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := NewCampaignService(repo, testLogger())
	owner := primitive.NewObjectID()
	intruder := primitive.NewObjectID()

	c, err := svc.Create(context.Background(), owner, validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), intruder, c.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(context.Background(), intruder, c.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Pause(context.Background(), intruder, c.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestCampaignStatusMachine(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := NewCampaignService(repo, testLogger())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	c, _ := svc.Create(ctx, userID, validCreateRequest())

	// pending cannot pause or resume
	if err := svc.Pause(ctx, userID, c.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pause from pending: expected ErrInvalidTransition, got %v", err)
	}
	if err := svc.Resume(ctx, userID, c.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("resume from pending: expected ErrInvalidTransition, got %v", err)
	}

	before := time.Now()
	if err := svc.StartNow(ctx, userID, c.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	got, _ := repo.FindByID(ctx, c.ID)
	if got.Status != models.CampaignStatusActive {
		t.Fatalf("expected active, got %s", got.Status)
	}
	if got.ScheduledTime.Before(before) {
		t.Fatal("start must pull the scheduled time to the present")
	}

	if err := svc.StartNow(ctx, userID, c.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double start: expected ErrInvalidTransition, got %v", err)
	}

	if err := svc.Pause(ctx, userID, c.ID); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if err := svc.Resume(ctx, userID, c.ID); err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	if err := svc.StopCampaign(ctx, userID, c.ID); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	got, _ = repo.FindByID(ctx, c.ID)
	if got.Status != models.CampaignStatusStopped {
		t.Fatalf("expected stopped, got %s", got.Status)
	}

	// stopped is terminal
	if err := svc.Resume(ctx, userID, c.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("resume from stopped: expected ErrInvalidTransition, got %v", err)
	}
	if err := svc.StopCampaign(ctx, userID, c.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double stop: expected ErrInvalidTransition, got %v", err)
	}
}

func TestCampaignUpdateResetsProgress(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := NewCampaignService(repo, testLogger())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	c, _ := svc.Create(ctx, userID, validCreateRequest())

	// Simulate partial delivery before the edit.
	_ = repo.UpdateRecipientResult(ctx, c.ID, 0, models.RecipientStatusSent, "")

	req := validCreateRequest()
	req.Title = "relaunch"
	req.Recipients = []string{"201011111111"}
	updated, err := svc.Update(ctx, userID, c.ID, req)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "relaunch" {
		t.Fatalf("expected title updated, got %q", updated.Title)
	}
	if len(updated.Recipients) != 1 || updated.Recipients[0].Status != models.RecipientStatusPending {
		t.Fatalf("recipients must be reset to pending: %+v", updated.Recipients)
	}
	if updated.Progress != (models.Progress{Total: 1}) {
		t.Fatalf("progress must be reset: %+v", updated.Progress)
	}
}

func TestCampaignUpdateRejectsTerminal(t *testing.T) {
	repo := newFakeCampaignRepo()
	svc := NewCampaignService(repo, testLogger())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	c, _ := svc.Create(ctx, userID, validCreateRequest())
	_ = repo.UpdateStatus(ctx, c.ID, models.CampaignStatusCompleted)

	if _, err := svc.Update(ctx, userID, c.ID, validCreateRequest()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
