package channel

import (
	"context"
	"time"
)

// Message represents one typed payload to deliver over a channel
type Message struct {
	To      string
	Type    string // text, image, audio, video, document
	Content string
	Caption string
}

// Receipt represents a delivery acknowledgment from the channel
type Receipt struct {
	MessageID string
	Timestamp time.Time
}

// Channel represents a live messaging-channel connection. Implementations
// wrap the actual transport session; validation and delivery must honor
// the deadline of the context they are given.
type Channel interface {
	// IsConnected reports whether the underlying session is usable.
	IsConnected() bool

	// ValidateRecipient reports whether the address exists on the network.
	ValidateRecipient(ctx context.Context, number string) (bool, error)

	// Deliver sends the message and returns an acknowledgment.
	Deliver(ctx context.Context, msg Message) (*Receipt, error)
}
