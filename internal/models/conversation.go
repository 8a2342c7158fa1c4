package models

import (
	"time"
)

// Conversation status values.
const (
	ConversationOpen   = "open"
	ConversationClosed = "closed"
)

// Conversation groups the messages exchanged with a user on one platform.
// A user has at most one open conversation per platform; the dispatcher
// reuses the most recent open one and creates a new one otherwise.
type Conversation struct {
	ID             string    `json:"id" badgerhold:"key"` // conv_{uuid}
	UserID         string    `json:"user_id" badgerhold:"index"`
	Platform       string    `json:"platform" badgerhold:"index"`
	Status         string    `json:"status" badgerhold:"index"` // "open" or "closed"
	HandoffEnabled bool      `json:"handoff_enabled"`           // When set, the bot steps aside for a human agent
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsOpen reports whether the conversation still accepts bot replies.
func (c *Conversation) IsOpen() bool {
	return c.Status == ConversationOpen
}
