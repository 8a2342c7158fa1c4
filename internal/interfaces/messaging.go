package interfaces

import (
	"context"
)

// ChannelSender delivers a bot reply to an external messaging platform.
// Implementations resolve their credentials at send time; a platform with
// no credentials configured returns an error that callers log and drop.
type ChannelSender interface {
	// Platform returns the channel identifier this sender serves.
	Platform() string

	// Send delivers text to the recipient identified by the channel-native
	// external ID.
	Send(ctx context.Context, externalID, text string) error
}

// SenderRegistry resolves the sender for a platform.
type SenderRegistry interface {
	// SenderFor returns the sender for a platform, or nil when the platform
	// delivers replies in-band (web widget).
	SenderFor(platform string) ChannelSender
}
