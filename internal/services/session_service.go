package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/internal/repositories"
	"github.com/zagel-app/zagel-backend/pkg/channel"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionService manages channel bindings: the durable session records
// and their live registrations in the channel manager
type SessionService struct {
	sessions repositories.SessionRepository
	channels *channel.Manager
	mock     bool
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(sessions repositories.SessionRepository, channels *channel.Manager, mock bool, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		channels: channels,
		mock:     mock,
		log:      log.With().Str("component", "sessions").Logger(),
	}
}

// Create persists a session record and, in mock mode, binds a simulated
// channel so the session is immediately connected. With a real transport,
// the adapter binds the channel when the session authenticates.
func (s *SessionService) Create(ctx context.Context, userID primitive.ObjectID, sessionID, name string) (*models.Session, error) {
	if existing, _ := s.sessions.FindBySessionID(ctx, sessionID); existing != nil {
		return nil, ErrSessionExists
	}

	session := &models.Session{
		UserID:    userID,
		SessionID: sessionID,
		Name:      name,
		Status:    models.SessionStatusDisconnected,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if s.mock {
		s.channels.Bind(sessionID, userID.Hex(), channel.NewMockChannel("ZAGEL"))
		session.Status = models.SessionStatusConnected
		if err := s.sessions.UpdateStatus(ctx, sessionID, models.SessionStatusConnected); err != nil {
			s.log.Error().Err(err).Str("session", sessionID).Msg("failed to persist session status")
		}
	}
	return session, nil
}

// ListByUser returns the user's sessions with their live connection state
func (s *SessionService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error) {
	sessions, err := s.sessions.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Status = models.SessionStatusDisconnected
		if b, ok := s.channels.Get(sessions[i].SessionID); ok && b.Channel.IsConnected() {
			sessions[i].Status = models.SessionStatusConnected
		}
	}
	return sessions, nil
}

// Delete unbinds the channel and removes the session record
func (s *SessionService) Delete(ctx context.Context, userID primitive.ObjectID, sessionID string) error {
	session, err := s.sessions.FindBySessionID(ctx, sessionID)
	if err != nil {
		return ErrNotFound
	}
	if session.UserID != userID {
		return ErrNotOwner
	}

	s.channels.Unbind(sessionID)
	return s.sessions.Delete(ctx, sessionID, userID)
}
