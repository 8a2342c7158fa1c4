package models

import (
	"time"
)

// Campaign status values.
const (
	CampaignPending   = "pending"
	CampaignScheduled = "scheduled"
	CampaignRunning   = "running"
	CampaignDone      = "done"
	CampaignFailed    = "failed"
)

// Campaign is an outbound broadcast to every known user on one platform.
// A campaign either runs immediately or on a cron schedule.
type Campaign struct {
	ID        string    `json:"id" badgerhold:"key"` // camp_{uuid}
	Name      string    `json:"name"`
	Platform  string    `json:"platform" badgerhold:"index"`
	Text      string    `json:"text"`
	Schedule  string    `json:"schedule,omitempty"` // Cron expression; empty = run now
	Status    string    `json:"status" badgerhold:"index"`
	SentCount int       `json:"sent_count"`
	FailCount int       `json:"fail_count"`
	LastRunAt time.Time `json:"last_run_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
