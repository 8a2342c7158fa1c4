// Package common provides shared utilities and default configuration.
package common

// DefaultKVValue represents a default key/value pair that is seeded on startup.
type DefaultKVValue struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// GetDefaultKVValues returns the list of default KV values seeded on startup.
// This is the single source of truth for default values.
func GetDefaultKVValues() []DefaultKVValue {
	return []DefaultKVValue{
		{
			Key:         "graph_api_base_url",
			Value:       "https://graph.facebook.com",
			Description: "Meta Graph API base URL",
		},
		{
			Key:         "telegram_api_base_url",
			Value:       "https://api.telegram.org",
			Description: "Telegram Bot API base URL",
		},
		{
			Key:         "pricing_summary",
			Value:       "",
			Description: "Short pricing summary used by the pricing intent action",
		},
	}
}
