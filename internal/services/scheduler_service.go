package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/zagel-app/zagel-backend/internal/events"
	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/internal/repositories"
	"github.com/zagel-app/zagel-backend/pkg/channel"
)

// SchedulerService polls the store for due campaigns and drives their
// delivery loops. It is resumable by construction: a restart re-discovers
// active campaigns through the due-selection query and continues from the
// first non-terminal recipient.
type SchedulerService struct {
	campaigns repositories.CampaignRepository
	channels  *channel.Manager
	delivery  *DeliveryService
	hub       *events.Hub
	log       zerolog.Logger
	interval  time.Duration
	cron      *cron.Cron

	// Injected for tests; production uses the package defaults.
	randDelay func(minDelay, maxDelay int) time.Duration
	wait      func(ctx context.Context, d time.Duration) bool

	passRunning atomic.Bool
}

// NewSchedulerService creates a new SchedulerService
func NewSchedulerService(campaigns repositories.CampaignRepository, channels *channel.Manager, delivery *DeliveryService, hub *events.Hub, interval time.Duration, log zerolog.Logger) *SchedulerService {
	return &SchedulerService{
		campaigns: campaigns,
		channels:  channels,
		delivery:  delivery,
		hub:       hub,
		log:       log.With().Str("component", "scheduler").Logger(),
		interval:  interval,
		randDelay: randomDelay,
		wait:      sleepCtx,
	}
}

// Start runs one pass immediately and then on the configured cadence
func (s *SchedulerService) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.Pass(ctx)
	})
	if err != nil {
		return err
	}

	go s.Pass(ctx)
	s.cron.Start()
	s.log.Info().Dur("interval", s.interval).Msg("campaign scheduler started")
	return nil
}

// Stop halts the cadence. A pass already in progress finishes on its own.
func (s *SchedulerService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Pass executes one scheduling pass. Overlapping passes are skipped, not
// queued.
func (s *SchedulerService) Pass(ctx context.Context) {
	if !s.passRunning.CompareAndSwap(false, true) {
		s.log.Debug().Msg("scheduling pass already running, skipping")
		return
	}
	defer s.passRunning.Store(false)

	due, err := s.campaigns.FindDue(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("due-campaign query failed")
		return
	}

	for i := range due {
		if ctx.Err() != nil {
			return
		}
		s.processCampaign(ctx, &due[i])
	}
}

// processCampaign runs one dispatch pass over a campaign's pending
// recipients
func (s *SchedulerService) processCampaign(ctx context.Context, c *models.Campaign) {
	log := s.log.With().Str("campaign", c.ID.Hex()).Str("session", c.SessionID).Logger()

	if c.Status == models.CampaignStatusPending {
		if err := s.campaigns.UpdateStatus(ctx, c.ID, models.CampaignStatusActive); err != nil {
			log.Error().Err(err).Msg("failed to activate campaign")
			return
		}
		c.Status = models.CampaignStatusActive
	}

	binding, ok := s.channels.Get(c.SessionID)
	if !ok || !binding.Channel.IsConnected() {
		// Defer: status stays untouched, the next pass retries.
		log.Warn().Msg("channel unavailable, deferring campaign")
		return
	}

	first := true
	for i := range c.Recipients {
		r := &c.Recipients[i]
		if models.RecipientTerminal(r.Status) {
			continue
		}

		// Re-read persisted status so pause/stop written by the control
		// surface aborts this pass.
		status, err := s.campaigns.GetStatus(ctx, c.ID)
		if err != nil {
			log.Error().Err(err).Msg("status re-read failed, aborting pass")
			return
		}
		if status == models.CampaignStatusPaused || status == models.CampaignStatusStopped {
			log.Info().Str("status", status).Int("index", i).Msg("campaign interrupted")
			return
		}

		if !first && !s.wait(ctx, s.randDelay(c.MinDelay, c.MaxDelay)) {
			return
		}
		first = false

		body, capt := personalize(c.MessageType, c.Content, c.Caption)
		_, err = s.delivery.Attempt(ctx, binding.Channel, channel.Message{
			To:      r.Number,
			Type:    c.MessageType,
			Content: body,
			Caption: capt,
		})

		eventStatus := events.StatusSuccess
		if err != nil {
			r.Status = models.RecipientStatusFailed
			r.Error = err.Error()
			c.Progress.Failed++
			eventStatus = events.StatusFailed
			log.Warn().Str("number", r.Number).Err(err).Msg("delivery failed")
		} else {
			r.Status = models.RecipientStatusSent
			r.Error = ""
			c.Progress.Sent++
		}

		// Persist each outcome immediately. Best-effort: a failed write is
		// logged and the loop continues, at the cost of possibly repeating
		// this recipient after a crash.
		if perr := s.campaigns.UpdateRecipientResult(ctx, c.ID, i, r.Status, r.Error); perr != nil {
			log.Error().Err(perr).Int("index", i).Msg("failed to persist recipient outcome")
		}

		s.hub.Publish(events.Event{
			Type:       events.TypeProgress,
			SessionID:  c.SessionID,
			CampaignID: c.ID.Hex(),
			Current:    c.Progress.Sent + c.Progress.Failed,
			Total:      c.Progress.Total,
			LastNumber: r.Number,
			Status:     eventStatus,
			Error:      r.Error,
		})
	}

	if c.Done() {
		if err := s.campaigns.UpdateStatus(ctx, c.ID, models.CampaignStatusCompleted); err != nil {
			log.Error().Err(err).Msg("failed to complete campaign")
			return
		}
		s.hub.Publish(events.Event{
			Type:       events.TypeComplete,
			SessionID:  c.SessionID,
			CampaignID: c.ID.Hex(),
			Success:    c.Progress.Sent,
			Failed:     c.Progress.Failed,
		})
		log.Info().Int("sent", c.Progress.Sent).Int("failed", c.Progress.Failed).Msg("campaign completed")
	}
}
