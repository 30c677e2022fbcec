package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/internal/repositories"
	"github.com/zagel-app/zagel-backend/internal/utils"
	"github.com/zagel-app/zagel-backend/pkg/channel"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AutoReplyService evaluates inbound messages against a user's rule set
// and manages the rules themselves
type AutoReplyService struct {
	rules    repositories.AutoReplyRepository
	sessions repositories.SessionRepository
	channels *channel.Manager
	delivery *DeliveryService
	log      zerolog.Logger
}

// NewAutoReplyService creates a new AutoReplyService
func NewAutoReplyService(rules repositories.AutoReplyRepository, sessions repositories.SessionRepository, channels *channel.Manager, delivery *DeliveryService, log zerolog.Logger) *AutoReplyService {
	return &AutoReplyService{
		rules:    rules,
		sessions: sessions,
		channels: channels,
		delivery: delivery,
		log:      log.With().Str("component", "autoreply").Logger(),
	}
}

// Match selects the first active rule of the user that matches the
// inbound text. Rules scoped to a session other than sessionID are
// skipped; within a rule, comma-separated sub-keywords are evaluated in
// order and the first hit wins. Returns nil when nothing matches.
func (s *AutoReplyService) Match(ctx context.Context, userID primitive.ObjectID, sessionID, text string) (*models.AutoReply, error) {
	rules, err := s.rules.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	normalized := utils.NormalizeText(text)
	for i := range rules {
		rule := &rules[i]
		if rule.SessionID != "" && rule.SessionID != sessionID {
			continue
		}
		for _, kw := range strings.Split(rule.Keyword, ",") {
			kw = utils.NormalizeText(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			switch rule.MatchType {
			case models.MatchTypeExact:
				if normalized == kw {
					return rule, nil
				}
			case models.MatchTypeContains:
				if utils.FuzzyContains(normalized, kw) {
					return rule, nil
				}
			}
		}
	}
	return nil, nil
}

// HandleInbound runs the matcher for one inbound message and, on a hit,
// delivers the configured response back to the sender over the session's
// channel
func (s *AutoReplyService) HandleInbound(ctx context.Context, sessionID, from, text string) error {
	session, err := s.sessions.FindBySessionID(ctx, sessionID)
	if err != nil {
		return ErrNotFound
	}

	rule, err := s.Match(ctx, session.UserID, sessionID, text)
	if err != nil {
		return err
	}
	if rule == nil {
		return nil
	}

	binding, ok := s.channels.Get(sessionID)
	if !ok || !binding.Channel.IsConnected() {
		return ErrChannelUnavailable
	}

	msg := channel.Message{To: from, Type: rule.ReplyType, Content: rule.Response}
	if rule.ReplyType != models.MessageTypeText && rule.MediaURL != "" {
		msg.Content = rule.MediaURL
		msg.Caption = rule.Response
	}

	if _, err := s.delivery.Attempt(ctx, binding.Channel, msg); err != nil {
		s.log.Warn().Str("session", sessionID).Str("to", from).Err(err).Msg("auto-reply delivery failed")
		return err
	}
	s.log.Info().Str("session", sessionID).Str("rule", rule.ID.Hex()).Msg("auto-reply sent")
	return nil
}

// CreateRule creates a new rule for the user
func (s *AutoReplyService) CreateRule(ctx context.Context, rule *models.AutoReply) error {
	if rule.MatchType == "" {
		rule.MatchType = models.MatchTypeContains
	}
	if rule.ReplyType == "" {
		rule.ReplyType = models.MessageTypeText
	}
	return s.rules.Create(ctx, rule)
}

// ListRules returns all rules owned by the user
func (s *AutoReplyService) ListRules(ctx context.Context, userID primitive.ObjectID) ([]models.AutoReply, error) {
	return s.rules.FindByUser(ctx, userID)
}

// UpdateRule edits a rule owned by the user
func (s *AutoReplyService) UpdateRule(ctx context.Context, userID primitive.ObjectID, rule *models.AutoReply) error {
	existing, err := s.rules.FindByID(ctx, rule.ID)
	if err != nil {
		return ErrNotFound
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}
	rule.UserID = existing.UserID
	rule.CreatedAt = existing.CreatedAt
	return s.rules.Update(ctx, rule)
}

// DeleteRule removes a rule owned by the user
func (s *AutoReplyService) DeleteRule(ctx context.Context, userID, id primitive.ObjectID) error {
	existing, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}
	return s.rules.Delete(ctx, id)
}
