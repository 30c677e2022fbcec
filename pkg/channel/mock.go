package channel

import (
	"context"
	"fmt"
	"time"
)

// MockChannel simulates a connected messaging channel. Used in
// development mode and in tests.
type MockChannel struct {
	Name string
}

// NewMockChannel creates a new MockChannel
func NewMockChannel(name string) *MockChannel {
	return &MockChannel{Name: name}
}

// IsConnected always reports true for the mock
func (m *MockChannel) IsConnected() bool {
	return true
}

// ValidateRecipient simulates a successful existence check
func (m *MockChannel) ValidateRecipient(ctx context.Context, number string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Deliver simulates a successful delivery
func (m *MockChannel) Deliver(ctx context.Context, msg Message) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Receipt{
		MessageID: fmt.Sprintf("%s-MOCK-MSG-%d", m.Name, time.Now().UnixNano()),
		Timestamp: time.Now(),
	}, nil
}
