package models

import (
	"time"
)

// Audit actions recorded by the dispatcher and admin surface.
const (
	AuditMessageHandled  = "message_handled"
	AuditLeadCaptured    = "lead_captured"
	AuditHandoffToggled  = "handoff_toggled"
	AuditDocumentAdded   = "document_added"
	AuditDocumentDeleted = "document_deleted"
	AuditCampaignRun     = "campaign_run"
)

// AuditEntry is an append-only operational record.
type AuditEntry struct {
	ID        string            `json:"id" badgerhold:"key"` // audit_{uuid}
	Action    string            `json:"action" badgerhold:"index"`
	Actor     string            `json:"actor,omitempty"` // Account ID for admin actions, empty for system
	Detail    map[string]string `json:"detail,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
