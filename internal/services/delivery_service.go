package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zagel-app/zagel-backend/internal/config"
	"github.com/zagel-app/zagel-backend/pkg/channel"
)

// DeliveryService performs one bounded validate-then-send attempt against
// a messaging channel. Both dispatch paths use it identically.
type DeliveryService struct {
	validationTimeout time.Duration
	sendTimeout       time.Duration
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(cfg *config.Config) *DeliveryService {
	return &DeliveryService{
		validationTimeout: time.Duration(cfg.Dispatch.ValidationTimeoutSeconds) * time.Second,
		sendTimeout:       time.Duration(cfg.Dispatch.SendTimeoutSeconds) * time.Second,
	}
}

// Attempt validates the recipient and delivers the message. The
// validation and send deadlines are propagated into the channel call, so
// a timed-out operation is cancelled rather than left running.
func (s *DeliveryService) Attempt(ctx context.Context, ch channel.Channel, msg channel.Message) (*channel.Receipt, error) {
	if !ch.IsConnected() {
		return nil, ErrChannelUnavailable
	}

	vctx, cancel := context.WithTimeout(ctx, s.validationTimeout)
	defer cancel()
	exists, err := ch.ValidateRecipient(vctx, msg.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: number not registered", ErrValidationFailed)
	}

	sctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	receipt, err := ch.Deliver(sctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if receipt.Timestamp.IsZero() {
		receipt.Timestamp = time.Now()
	}
	return receipt, nil
}
