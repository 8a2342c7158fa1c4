package models

import (
	"strings"
	"time"
)

// AutoReplyPrefix marks a rule action that replaces the generated reply.
// The text after the prefix becomes the bot reply verbatim.
const AutoReplyPrefix = "auto_reply:"

// IntentActionDirective marks a rule that asks the dispatcher to answer
// with the canned intent action (booking confirmation, order status line,
// refund policy, pricing summary) when the classified intent has one.
const IntentActionDirective = "intent_action"

// WorkflowRule is an operator-defined keyword rule evaluated against every
// inbound message. Rules are evaluated in Position order; when several rules
// match, the last match wins.
type WorkflowRule struct {
	ID        string    `json:"id" badgerhold:"key"` // rule_{uuid}
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"` // Case-insensitive substring matches
	Action    string    `json:"action"`   // e.g. "auto_reply: Calling you now", "tag: vip"
	Enabled   bool      `json:"enabled"`
	Position  int       `json:"position" badgerhold:"index"` // Evaluation order, ascending
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Matches reports whether any rule keyword occurs in the lowercased message.
func (r *WorkflowRule) Matches(loweredMessage string) bool {
	for _, keyword := range r.Keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(loweredMessage, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Flow is a named multi-step conversation template managed from the admin
// console. Nodes are free-form so the console can evolve its editor without
// server releases.
type Flow struct {
	ID        string                   `json:"id" badgerhold:"key"` // flow_{uuid}
	Name      string                   `json:"name"`
	Nodes     []map[string]interface{} `json:"nodes"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}
