package models

import (
	"time"
)

// Platform identifiers for message channels.
const (
	PlatformWhatsApp  = "whatsapp"
	PlatformMessenger = "messenger"
	PlatformInstagram = "instagram"
	PlatformTelegram  = "telegram"
	PlatformSMS       = "sms"
	PlatformWeb       = "web"
)

// KnownPlatforms lists every supported channel identifier.
var KnownPlatforms = []string{
	PlatformWhatsApp,
	PlatformMessenger,
	PlatformInstagram,
	PlatformTelegram,
	PlatformSMS,
	PlatformWeb,
}

// IsKnownPlatform reports whether the given platform identifier is supported.
func IsKnownPlatform(platform string) bool {
	for _, p := range KnownPlatforms {
		if p == platform {
			return true
		}
	}
	return false
}

// User represents an end user reaching the bot through a channel.
// A user is identified by the (platform, external_id) pair; the same person
// on two channels is two users.
type User struct {
	ID         string    `json:"id" badgerhold:"key"` // usr_{uuid}
	Platform   string    `json:"platform" badgerhold:"index"`
	ExternalID string    `json:"external_id" badgerhold:"index"` // Channel-native sender ID (phone, PSID, chat ID, session ID)
	TenantID   string    `json:"tenant_id,omitempty"`            // Carried for future multi-tenant use, not enforced
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
