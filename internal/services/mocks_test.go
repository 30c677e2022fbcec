package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/pkg/channel"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeChannel is a scriptable Channel implementation
type fakeChannel struct {
	connected  bool
	validateFn func(ctx context.Context, number string) (bool, error)
	deliverFn  func(ctx context.Context, msg channel.Message) (*channel.Receipt, error)

	mu        sync.Mutex
	delivered []channel.Message
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{connected: true}
}

func (f *fakeChannel) IsConnected() bool { return f.connected }

func (f *fakeChannel) ValidateRecipient(ctx context.Context, number string) (bool, error) {
	if f.validateFn != nil {
		return f.validateFn(ctx, number)
	}
	return true, nil
}

func (f *fakeChannel) Deliver(ctx context.Context, msg channel.Message) (*channel.Receipt, error) {
	if f.deliverFn != nil {
		r, err := f.deliverFn(ctx, msg)
		if err != nil {
			return nil, err
		}
		f.record(msg)
		return r, nil
	}
	f.record(msg)
	return &channel.Receipt{MessageID: "fake", Timestamp: time.Now()}, nil
}

func (f *fakeChannel) record(msg channel.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, msg)
}

func (f *fakeChannel) deliveredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

func (f *fakeChannel) deliveredTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.delivered))
	for i, m := range f.delivered {
		out[i] = m.To
	}
	return out
}

// fakeCampaignRepo is an in-memory CampaignRepository
type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[primitive.ObjectID]*models.Campaign

	findDueCalls    int
	recipientWrites int
	// afterRecipientWrite runs after each persisted outcome; tests use it
	// to flip status mid-pass.
	afterRecipientWrite func(repo *fakeCampaignRepo, id primitive.ObjectID)
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[primitive.ObjectID]*models.Campaign)}
}

func copyCampaign(c *models.Campaign) *models.Campaign {
	cp := *c
	cp.Recipients = make([]models.Recipient, len(c.Recipients))
	copy(cp.Recipients, c.Recipients)
	return &cp
}

func (r *fakeCampaignRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCampaign(c), nil
}

func (r *fakeCampaignRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Campaign
	for _, c := range r.campaigns {
		if c.UserID == userID {
			out = append(out, *copyCampaign(c))
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) FindDue(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findDueCalls++
	var out []models.Campaign
	for _, c := range r.campaigns {
		due := c.Status == models.CampaignStatusPending || c.Status == models.CampaignStatusActive
		if due && !c.ScheduledTime.After(now) {
			out = append(out, *copyCampaign(c))
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	r.campaigns[c.ID] = copyCampaign(c)
	return nil
}

func (r *fakeCampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; !ok {
		return ErrNotFound
	}
	r.campaigns[c.ID] = copyCampaign(c)
	return nil
}

func (r *fakeCampaignRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.campaigns, id)
	return nil
}

func (r *fakeCampaignRepo) GetStatus(ctx context.Context, id primitive.ObjectID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return "", ErrNotFound
	}
	return c.Status, nil
}

func (r *fakeCampaignRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	return nil
}

func (r *fakeCampaignRepo) UpdateRecipientResult(ctx context.Context, id primitive.ObjectID, index int, status, errMsg string) error {
	r.mu.Lock()
	c, ok := r.campaigns[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	c.Recipients[index].Status = status
	c.Recipients[index].Error = errMsg
	if status == models.RecipientStatusFailed {
		c.Progress.Failed++
	} else {
		c.Progress.Sent++
	}
	r.recipientWrites++
	hook := r.afterRecipientWrite
	r.mu.Unlock()

	if hook != nil {
		hook(r, id)
	}
	return nil
}

// fakeAutoReplyRepo is an in-memory AutoReplyRepository
type fakeAutoReplyRepo struct {
	rules []models.AutoReply
}

func (r *fakeAutoReplyRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AutoReply, error) {
	for i := range r.rules {
		if r.rules[i].ID == id {
			rule := r.rules[i]
			return &rule, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeAutoReplyRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.AutoReply, error) {
	var out []models.AutoReply
	for _, rule := range r.rules {
		if rule.UserID == userID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeAutoReplyRepo) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.AutoReply, error) {
	var out []models.AutoReply
	for _, rule := range r.rules {
		if rule.UserID == userID && rule.IsActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeAutoReplyRepo) Create(ctx context.Context, rule *models.AutoReply) error {
	if rule.ID.IsZero() {
		rule.ID = primitive.NewObjectID()
	}
	r.rules = append(r.rules, *rule)
	return nil
}

func (r *fakeAutoReplyRepo) Update(ctx context.Context, rule *models.AutoReply) error {
	for i := range r.rules {
		if r.rules[i].ID == rule.ID {
			r.rules[i] = *rule
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeAutoReplyRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// fakeSessionRepo is an in-memory SessionRepository
type fakeSessionRepo struct {
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *fakeSessionRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error) {
	var out []models.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	cp := *s
	r.sessions[s.SessionID] = &cp
	return nil
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, sessionID, status string) error {
	if s, ok := r.sessions[sessionID]; ok {
		s.Status = status
	}
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, sessionID string, userID primitive.ObjectID) error {
	delete(r.sessions, sessionID)
	return nil
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testDelivery() *DeliveryService {
	return &DeliveryService{
		validationTimeout: time.Second,
		sendTimeout:       time.Second,
	}
}

func noDelay(minDelay, maxDelay int) time.Duration { return 0 }
