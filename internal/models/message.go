package models

import (
	"time"
)

// Message sender values.
const (
	SenderUser  = "user"
	SenderBot   = "bot"
	SenderAgent = "agent"
)

// Message is a single utterance within a conversation.
type Message struct {
	ID             string    `json:"id" badgerhold:"key"` // msg_{uuid}
	ConversationID string    `json:"conversation_id" badgerhold:"index"`
	Platform       string    `json:"platform" badgerhold:"index"`
	Sender         string    `json:"sender"` // "user", "bot" or "agent"
	Content        string    `json:"content"`
	Intent         string    `json:"intent,omitempty"` // Classified intent, set on user messages
	CreatedAt      time.Time `json:"created_at"`
}
