package models

import (
	"time"
)

// LeadFields holds the nullable contact fields pulled out of a message.
// A nil pointer means the field was absent, not empty.
type LeadFields struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Intent *string `json:"intent"`
}

// IsEmpty reports whether every extracted field is null.
// An all-null extraction never becomes a stored lead.
func (f LeadFields) IsEmpty() bool {
	return f.Name == nil && f.Phone == nil && f.Email == nil && f.Intent == nil
}

// Lead is a persisted sales contact captured from a conversation.
type Lead struct {
	ID             string    `json:"id" badgerhold:"key"` // lead_{uuid}
	Name           *string   `json:"name"`
	Phone          *string   `json:"phone"`
	Email          *string   `json:"email"`
	Intent         *string   `json:"intent"`
	Platform       string    `json:"platform" badgerhold:"index"`
	ConversationID string    `json:"conversation_id" badgerhold:"index"`
	CreatedAt      time.Time `json:"created_at"`
}

// StringOrEmpty returns the pointed-to string or "" for nil.
// Used by CSV export and forwarding payloads.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
