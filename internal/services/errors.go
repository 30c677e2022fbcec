package services

import "errors"

// Dispatch error taxonomy. Recipient-local failures (validation, send)
// are recorded and never abort the surrounding loop; the rest are fatal
// to the operation that raised them.
var (
	ErrNoValidRecipients  = errors.New("no valid recipients after normalization")
	ErrValidationFailed   = errors.New("recipient validation failed")
	ErrSendFailed         = errors.New("message send failed")
	ErrChannelUnavailable = errors.New("channel is not connected")
	ErrCampaignRunning    = errors.New("a live campaign is already running for this session")
	ErrNotOwner           = errors.New("session does not belong to the requesting user")
	ErrNotFound           = errors.New("not found")
	ErrSessionExists      = errors.New("session id already in use")
	ErrInvalidTransition  = errors.New("invalid campaign status transition")
)
