package models

// AnalyticsSummary aggregates the admin dashboard counters.
type AnalyticsSummary struct {
	TotalMessages        int            `json:"total_messages"`
	TotalConversations   int            `json:"total_conversations"`
	TotalLeads           int            `json:"total_leads"`
	TotalUsers           int            `json:"total_users"`
	MessagesByPlatform   map[string]int `json:"messages_by_platform"`
	LeadsByPlatform      map[string]int `json:"leads_by_platform"`
	MessagesLast24h      int            `json:"messages_last_24h"`
	OpenConversations    int            `json:"open_conversations"`
	HandoffConversations int            `json:"handoff_conversations"`
}
