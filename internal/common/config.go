package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/ternarybob/respondo/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Bot         BotConfig        `toml:"bot"`
	Knowledge   KnowledgeConfig  `toml:"knowledge"`
	Channels    ChannelsConfig   `toml:"channels"`
	Forwarding  ForwardingConfig `toml:"forwarding"`
	Auth        AuthConfig       `toml:"auth"`
	Workflows   WorkflowsConfig  `toml:"workflows"`
	Broadcast   BroadcastConfig  `toml:"broadcast"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	LLM         LLMConfig        `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
	// Webhook requests per second per platform. Zero disables throttling.
	WebhookRateLimit float64 `toml:"webhook_rate_limit"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// BotConfig controls the conversational behavior of the assistant.
type BotConfig struct {
	Name           string `toml:"name"`            // Display name used in prompts
	Persona        string `toml:"persona"`         // System persona prepended to LLM prompts
	HistoryWindow  int    `toml:"history_window"`  // Messages of history fed to the generator (default: 10)
	HandoffMessage string `toml:"handoff_message"` // Reply sent while a conversation is handed to a human
}

// KnowledgeConfig controls chunking and retrieval over the knowledge base.
type KnowledgeConfig struct {
	ChunkSize    int `toml:"chunk_size"`    // Characters per chunk (default: 800)
	ChunkOverlap int `toml:"chunk_overlap"` // Overlapping characters between chunks (default: 100)
	TopK         int `toml:"top_k"`         // Chunks retrieved per query (default: 4)
}

// ChannelsConfig holds per-platform messaging credentials.
// Empty values disable outbound sends for that platform; webhooks still
// accept and record inbound traffic.
type ChannelsConfig struct {
	GraphVersion string          `toml:"graph_version"` // Meta Graph API version (default: "v19.0")
	WhatsApp     WhatsAppConfig  `toml:"whatsapp"`
	Messenger    MessengerConfig `toml:"messenger"`
	Instagram    InstagramConfig `toml:"instagram"`
	Telegram     TelegramConfig  `toml:"telegram"`
	SMS          SMSConfig       `toml:"sms"`
}

type WhatsAppConfig struct {
	VerifyToken   string `toml:"verify_token"`    // Webhook verification token
	AccessToken   string `toml:"access_token"`    // Graph API bearer token
	PhoneNumberID string `toml:"phone_number_id"` // Business phone number ID
}

type MessengerConfig struct {
	VerifyToken string `toml:"verify_token"`
	PageToken   string `toml:"page_token"` // Page access token
}

type InstagramConfig struct {
	VerifyToken string `toml:"verify_token"`
	AccessToken string `toml:"access_token"`
}

type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
}

// SMSConfig holds Twilio credentials for the outbound SMS channel.
type SMSConfig struct {
	AccountSID string `toml:"account_sid"`
	AuthToken  string `toml:"auth_token"`
	FromNumber string `toml:"from_number"` // E.164 sender number
}

// ForwardingConfig holds outbound lead forwarding targets.
// Unset URLs silently disable the corresponding forwarder.
type ForwardingConfig struct {
	CRMWebhookURL   string        `toml:"crm_webhook_url"`
	SheetWebhookURL string        `toml:"sheet_webhook_url"`
	Timeout         time.Duration `toml:"timeout"`        // Outbound request timeout (default: 20s)
	LeadNotifyTo    string        `toml:"lead_notify_to"` // Email address for new-lead notifications (optional)
}

// AuthConfig holds admin account token settings.
type AuthConfig struct {
	TokenSecret     string `toml:"token_secret"`      // HMAC secret for access tokens
	TokenTTLMinutes int    `toml:"token_ttl_minutes"` // Token lifetime in minutes (default: 1440)
}

// WorkflowsConfig controls workflow rule seeding.
type WorkflowsConfig struct {
	SeedDir string `toml:"seed_dir"` // Directory of YAML rule files loaded on startup
}

// BroadcastConfig controls campaign fan-out behavior.
type BroadcastConfig struct {
	Concurrency int `toml:"concurrency"` // Concurrent sends per campaign (default: 4)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "gemini-3-flash-preview")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 1024)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "20s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key for Claude operations
	Model       string  `toml:"model"`       // Model for AI operations (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 1024)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "20s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderNone disables the LLM; replies fall back to echo mode
	LLMProviderNone LLMProvider = "none"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini", "claude" or "none" (default: "none")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in respondo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:             8080,
			Host:             "localhost",
			WebhookRateLimit: 0, // Disabled unless configured
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Bot: BotConfig{
			Name:           "Respondo",
			Persona:        "You are a helpful customer assistant. Answer using the provided business context when it is relevant.",
			HistoryWindow:  10,
			HandoffMessage: "Thanks for reaching out. A human agent will respond shortly.",
		},
		Knowledge: KnowledgeConfig{
			ChunkSize:    800,
			ChunkOverlap: 100,
			TopK:         4,
		},
		Channels: ChannelsConfig{
			GraphVersion: "v19.0",
		},
		Forwarding: ForwardingConfig{
			Timeout: 20 * time.Second,
		},
		Auth: AuthConfig{
			TokenSecret:     "", // Must be provided; token issuing fails without it
			TokenTTLMinutes: 1440,
		},
		Workflows: WorkflowsConfig{
			SeedDir: "./workflows",
		},
		Broadcast: BroadcastConfig{
			Concurrency: 4,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			MaxTokens:   1024,
			Timeout:     "20s",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   1024,
			Timeout:     "20s",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderNone,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files override
// earlier files. Priority: CLI flags > environment variables > last file >
// ... > first file > defaults.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: RESPONDO_ENV, fallback: GO_ENV)
	if env := os.Getenv("RESPONDO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("RESPONDO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RESPONDO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if rps := os.Getenv("RESPONDO_WEBHOOK_RATE_LIMIT"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			config.Server.WebhookRateLimit = r
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("RESPONDO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("RESPONDO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("RESPONDO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("RESPONDO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Bot configuration
	if name := os.Getenv("RESPONDO_BOT_NAME"); name != "" {
		config.Bot.Name = name
	}
	if persona := os.Getenv("RESPONDO_BOT_PERSONA"); persona != "" {
		config.Bot.Persona = persona
	}
	if window := os.Getenv("RESPONDO_BOT_HISTORY_WINDOW"); window != "" {
		if w, err := strconv.Atoi(window); err == nil && w > 0 {
			config.Bot.HistoryWindow = w
		}
	}

	// Knowledge configuration
	if chunkSize := os.Getenv("RESPONDO_KNOWLEDGE_CHUNK_SIZE"); chunkSize != "" {
		if cs, err := strconv.Atoi(chunkSize); err == nil && cs > 0 {
			config.Knowledge.ChunkSize = cs
		}
	}
	if overlap := os.Getenv("RESPONDO_KNOWLEDGE_CHUNK_OVERLAP"); overlap != "" {
		if co, err := strconv.Atoi(overlap); err == nil && co >= 0 {
			config.Knowledge.ChunkOverlap = co
		}
	}
	if topK := os.Getenv("RESPONDO_KNOWLEDGE_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil && k > 0 {
			config.Knowledge.TopK = k
		}
	}

	// Channel credentials
	if v := os.Getenv("RESPONDO_GRAPH_VERSION"); v != "" {
		config.Channels.GraphVersion = v
	}
	if v := os.Getenv("RESPONDO_WHATSAPP_VERIFY_TOKEN"); v != "" {
		config.Channels.WhatsApp.VerifyToken = v
	}
	if v := os.Getenv("RESPONDO_WHATSAPP_ACCESS_TOKEN"); v != "" {
		config.Channels.WhatsApp.AccessToken = v
	}
	if v := os.Getenv("RESPONDO_WHATSAPP_PHONE_NUMBER_ID"); v != "" {
		config.Channels.WhatsApp.PhoneNumberID = v
	}
	if v := os.Getenv("RESPONDO_MESSENGER_VERIFY_TOKEN"); v != "" {
		config.Channels.Messenger.VerifyToken = v
	}
	if v := os.Getenv("RESPONDO_MESSENGER_PAGE_TOKEN"); v != "" {
		config.Channels.Messenger.PageToken = v
	}
	if v := os.Getenv("RESPONDO_INSTAGRAM_VERIFY_TOKEN"); v != "" {
		config.Channels.Instagram.VerifyToken = v
	}
	if v := os.Getenv("RESPONDO_INSTAGRAM_ACCESS_TOKEN"); v != "" {
		config.Channels.Instagram.AccessToken = v
	}
	if v := os.Getenv("RESPONDO_TELEGRAM_BOT_TOKEN"); v != "" {
		config.Channels.Telegram.BotToken = v
	}

	// Forwarding configuration
	if v := os.Getenv("RESPONDO_CRM_WEBHOOK_URL"); v != "" {
		config.Forwarding.CRMWebhookURL = v
	}
	if v := os.Getenv("RESPONDO_SHEET_WEBHOOK_URL"); v != "" {
		config.Forwarding.SheetWebhookURL = v
	}
	if v := os.Getenv("RESPONDO_FORWARDING_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Forwarding.Timeout = d
		}
	}
	if v := os.Getenv("RESPONDO_LEAD_NOTIFY_TO"); v != "" {
		config.Forwarding.LeadNotifyTo = v
	}

	// Auth configuration
	if v := os.Getenv("RESPONDO_TOKEN_SECRET"); v != "" {
		config.Auth.TokenSecret = v
	}
	if v := os.Getenv("RESPONDO_TOKEN_TTL_MINUTES"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			config.Auth.TokenTTLMinutes = ttl
		}
	}

	// Workflows configuration
	if v := os.Getenv("RESPONDO_WORKFLOWS_SEED_DIR"); v != "" {
		config.Workflows.SeedDir = v
	}

	// Broadcast configuration
	if v := os.Getenv("RESPONDO_BROADCAST_CONCURRENCY"); v != "" {
		if c, err := strconv.Atoi(v); err == nil && c > 0 {
			config.Broadcast.Concurrency = c
		}
	}

	// Gemini configuration
	if apiKey := os.Getenv("RESPONDO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("RESPONDO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if maxTokens := os.Getenv("RESPONDO_GEMINI_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Gemini.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("RESPONDO_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if temperature := os.Getenv("RESPONDO_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("RESPONDO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // RESPONDO_ prefix takes priority
	}
	if model := os.Getenv("RESPONDO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("RESPONDO_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("RESPONDO_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if temperature := os.Getenv("RESPONDO_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("RESPONDO_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ResolveSetting resolves a runtime setting by name with environment variable
// priority. Resolution order: environment variables → KV store → config
// fallback → error. RESPONDO_* environment variables always take precedence,
// so operators can rotate credentials without touching the store.
func ResolveSetting(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":     {"RESPONDO_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key":  {"RESPONDO_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"claude_api_key":     {"RESPONDO_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"crm_webhook_url":    {"RESPONDO_CRM_WEBHOOK_URL"},
		"sheet_webhook_url":  {"RESPONDO_SHEET_WEBHOOK_URL"},
		"telegram_bot_token": {"RESPONDO_TELEGRAM_BOT_TOKEN"},
	}

	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		value, err := kvStorage.Get(ctx, name)
		if err == nil && value != "" {
			return value, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("setting '%s' not found in environment, KV store, or config", name)
}

// ValidateBroadcastSchedule validates a cron schedule expression and ensures
// a minimum 5-minute interval so campaigns cannot hammer channel APIs.
func ValidateBroadcastSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]

	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}

	if strings.HasPrefix(minuteField, "*/") {
		intervalStr := strings.TrimPrefix(minuteField, "*/")
		interval, err := strconv.Atoi(intervalStr)
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// DeepCloneConfig creates a deep copy of the Config struct.
// Used by the config service so handlers can never mutate the running snapshot.
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if len(c.Logging.Output) > 0 {
		clone.Logging.Output = make([]string, len(c.Logging.Output))
		copy(clone.Logging.Output, c.Logging.Output)
	}

	return &clone
}
