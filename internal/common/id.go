package common

import (
	"github.com/google/uuid"
)

// Entity ID generators. Each entity type carries a short prefix so raw IDs
// in logs and exports identify their table at a glance.

// NewUserID generates a unique end-user ID (usr_<uuid>)
func NewUserID() string {
	return "usr_" + uuid.New().String()
}

// NewConversationID generates a unique conversation ID (conv_<uuid>)
func NewConversationID() string {
	return "conv_" + uuid.New().String()
}

// NewMessageID generates a unique message ID (msg_<uuid>)
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}

// NewLeadID generates a unique lead ID (lead_<uuid>)
func NewLeadID() string {
	return "lead_" + uuid.New().String()
}

// NewDocumentID generates a unique knowledge document ID (doc_<uuid>)
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewRuleID generates a unique workflow rule ID (rule_<uuid>)
func NewRuleID() string {
	return "rule_" + uuid.New().String()
}

// NewFlowID generates a unique flow ID (flow_<uuid>)
func NewFlowID() string {
	return "flow_" + uuid.New().String()
}

// NewAccountID generates a unique admin account ID (acct_<uuid>)
func NewAccountID() string {
	return "acct_" + uuid.New().String()
}

// NewCampaignID generates a unique broadcast campaign ID (camp_<uuid>)
func NewCampaignID() string {
	return "camp_" + uuid.New().String()
}

// NewAuditID generates a unique audit log entry ID (audit_<uuid>)
func NewAuditID() string {
	return "audit_" + uuid.New().String()
}
