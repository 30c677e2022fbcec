package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/zagel-app/zagel-backend/internal/events"
	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/internal/utils"
	"github.com/zagel-app/zagel-backend/pkg/channel"
)

// DispatchService runs live (immediate) campaigns. It owns the registry
// of running dispatches, keyed by session ID, and guarantees at most one
// live campaign per session.
type DispatchService struct {
	channels *channel.Manager
	delivery *DeliveryService
	hub      *events.Hub
	log      zerolog.Logger

	// Injected for tests; production uses the defaults below.
	randDelay func(minDelay, maxDelay int) time.Duration
	wait      func(ctx context.Context, d time.Duration) bool

	mu     sync.Mutex
	active map[string]*liveDispatch
}

// liveDispatch is one registry entry. The owner is recorded here so Stop
// can verify it even after the session's channel binding is gone.
type liveDispatch struct {
	userID string
	cancel context.CancelFunc
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(channels *channel.Manager, delivery *DeliveryService, hub *events.Hub, log zerolog.Logger) *DispatchService {
	return &DispatchService{
		channels:  channels,
		delivery:  delivery,
		hub:       hub,
		log:       log.With().Str("component", "dispatch").Logger(),
		randDelay: randomDelay,
		wait:      sleepCtx,
		active:    make(map[string]*liveDispatch),
	}
}

// randomDelay draws a whole number of seconds in [minDelay, maxDelay]
func randomDelay(minDelay, maxDelay int) time.Duration {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return time.Duration(minDelay+rand.Intn(maxDelay-minDelay+1)) * time.Second
}

// sleepCtx sleeps for d, returning false if ctx is cancelled first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Start begins a live dispatch on the given session. Recipients are
// normalized and deduplicated first; the loop itself runs asynchronously
// and reports through the event hub. Returns the number of recipients
// that will be processed.
func (s *DispatchService) Start(userID, sessionID string, recipients []string, msgType, content, caption string, minDelay, maxDelay int) (int, error) {
	binding, ok := s.channels.Get(sessionID)
	if !ok || !binding.Channel.IsConnected() {
		return 0, ErrChannelUnavailable
	}
	if binding.UserID != userID {
		return 0, ErrNotOwner
	}

	numbers := utils.NormalizeNumbers(recipients)
	if len(numbers) == 0 {
		return 0, ErrNoValidRecipients
	}

	// Insert-if-absent: the registry is the mutual-exclusion point.
	s.mu.Lock()
	if _, running := s.active[sessionID]; running {
		s.mu.Unlock()
		return 0, ErrCampaignRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.active[sessionID] = &liveDispatch{userID: userID, cancel: cancel}
	s.mu.Unlock()

	go s.run(ctx, binding, numbers, msgType, content, caption, minDelay, maxDelay)
	return len(numbers), nil
}

// Stop requests cancellation of the session's live dispatch. Cooperative:
// it takes effect at the next loop iteration boundary, never interrupting
// an attempt already in flight.
func (s *DispatchService) Stop(userID, sessionID string) error {
	s.mu.Lock()
	d, ok := s.active[sessionID]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if d.userID != userID {
		return ErrNotOwner
	}
	d.cancel()
	return nil
}

// Running reports whether the session has a live dispatch in progress
func (s *DispatchService) Running(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[sessionID]
	return ok
}

func (s *DispatchService) run(ctx context.Context, binding *channel.Binding, numbers []string, msgType, content, caption string, minDelay, maxDelay int) {
	sessionID := binding.SessionID
	total := len(numbers)
	var success, failed int

	defer func() {
		s.mu.Lock()
		delete(s.active, sessionID)
		s.mu.Unlock()
		s.hub.Publish(events.Event{
			Type:      events.TypeComplete,
			SessionID: sessionID,
			Success:   success,
			Failed:    failed,
		})
		s.log.Info().Str("session", sessionID).Int("success", success).Int("failed", failed).Msg("live dispatch finished")
	}()

	s.hub.Publish(events.Event{
		Type:      events.TypeStarting,
		SessionID: sessionID,
		Total:     total,
	})
	s.log.Info().Str("session", sessionID).Int("total", total).Msg("live dispatch started")

	for i, number := range numbers {
		if i > 0 && !s.wait(ctx, s.randDelay(minDelay, maxDelay)) {
			s.publishStopped(sessionID, i, total)
			return
		}
		if ctx.Err() != nil {
			s.publishStopped(sessionID, i, total)
			return
		}

		body, capt := personalize(msgType, content, caption)
		// The attempt deliberately runs outside the cancellation scope:
		// stop only applies at iteration boundaries.
		_, err := s.delivery.Attempt(context.Background(), binding.Channel, channel.Message{
			To:      number,
			Type:    msgType,
			Content: body,
			Caption: capt,
		})
		if err != nil {
			failed++
			s.hub.Publish(events.Event{
				Type:       events.TypeProgress,
				SessionID:  sessionID,
				Current:    i + 1,
				Total:      total,
				LastNumber: number,
				Status:     events.StatusFailed,
				Error:      err.Error(),
			})
			s.log.Warn().Str("session", sessionID).Str("number", number).Err(err).Msg("delivery failed")
			continue
		}
		success++
		s.hub.Publish(events.Event{
			Type:       events.TypeProgress,
			SessionID:  sessionID,
			Current:    i + 1,
			Total:      total,
			LastNumber: number,
			Status:     events.StatusSuccess,
		})
	}
}

func (s *DispatchService) publishStopped(sessionID string, current, total int) {
	s.hub.Publish(events.Event{
		Type:      events.TypeProgress,
		SessionID: sessionID,
		Current:   current,
		Total:     total,
		Status:    events.StatusStopped,
	})
	s.log.Info().Str("session", sessionID).Int("current", current).Msg("live dispatch stopped")
}

// personalize applies template substitution to text content and captions
func personalize(msgType, content, caption string) (string, string) {
	if msgType == models.MessageTypeText {
		content = utils.ApplyTemplate(content)
	}
	return content, utils.ApplyTemplate(caption)
}
