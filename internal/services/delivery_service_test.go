package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zagel-app/zagel-backend/pkg/channel"
)

func TestDeliveryAttemptSuccess(t *testing.T) {
	ch := newFakeChannel()
	d := testDelivery()

	receipt, err := d.Attempt(context.Background(), ch, channel.Message{
		To:      "201234567890",
		Type:    "text",
		Content: "hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt == nil || receipt.Timestamp.IsZero() {
		t.Fatal("expected receipt with timestamp")
	}
	if ch.deliveredCount() != 1 {
		t.Fatalf("expected 1 delivery, got %d", ch.deliveredCount())
	}
}

func TestDeliveryAttemptNotConnected(t *testing.T) {
	ch := newFakeChannel()
	ch.connected = false
	d := testDelivery()

	_, err := d.Attempt(context.Background(), ch, channel.Message{To: "201234567890", Type: "text"})
	if !errors.Is(err, ErrChannelUnavailable) {
		t.Fatalf("expected ErrChannelUnavailable, got %v", err)
	}
	if ch.deliveredCount() != 0 {
		t.Fatal("no delivery should be attempted on a disconnected channel")
	}
}

func TestDeliveryAttemptValidationRejected(t *testing.T) {
	ch := newFakeChannel()
	ch.validateFn = func(ctx context.Context, number string) (bool, error) {
		return false, nil
	}
	d := testDelivery()

	_, err := d.Attempt(context.Background(), ch, channel.Message{To: "201234567890", Type: "text"})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if ch.deliveredCount() != 0 {
		t.Fatal("send must not run after failed validation")
	}
}

func TestDeliveryAttemptValidationTimeout(t *testing.T) {
	ch := newFakeChannel()
	ch.validateFn = func(ctx context.Context, number string) (bool, error) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Second):
			return true, nil
		}
	}
	d := &DeliveryService{validationTimeout: 10 * time.Millisecond, sendTimeout: time.Second}

	_, err := d.Attempt(context.Background(), ch, channel.Message{To: "201234567890", Type: "text"})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed on timeout, got %v", err)
	}
}

func TestDeliveryAttemptSendTimeout(t *testing.T) {
	ch := newFakeChannel()
	ch.deliverFn = func(ctx context.Context, msg channel.Message) (*channel.Receipt, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return &channel.Receipt{MessageID: "late"}, nil
		}
	}
	d := &DeliveryService{validationTimeout: time.Second, sendTimeout: 10 * time.Millisecond}

	_, err := d.Attempt(context.Background(), ch, channel.Message{To: "201234567890", Type: "text"})
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed on timeout, got %v", err)
	}
}

func TestDeliveryAttemptSendError(t *testing.T) {
	ch := newFakeChannel()
	ch.deliverFn = func(ctx context.Context, msg channel.Message) (*channel.Receipt, error) {
		return nil, errors.New("wire broke")
	}
	d := testDelivery()

	_, err := d.Attempt(context.Background(), ch, channel.Message{To: "201234567890", Type: "text"})
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", err)
	}
}
