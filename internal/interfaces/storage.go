package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/respondo/internal/models"
)

// ListOptions carries pagination and filtering for listing queries.
type ListOptions struct {
	Limit    int
	Offset   int
	Platform string // Empty = all platforms
}

// UserStorage - end users resolved by (platform, external_id)
type UserStorage interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByExternalID(ctx context.Context, platform, externalID string) (*models.User, error)
	ListUsersByPlatform(ctx context.Context, platform string) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// ConversationStorage - conversations and their lifecycle
type ConversationStorage interface {
	SaveConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	// GetOpenConversation returns the most recently updated open conversation
	// for the user on the platform, or nil when none exists.
	GetOpenConversation(ctx context.Context, userID, platform string) (*models.Conversation, error)
	ListConversations(ctx context.Context, opts *ListOptions) ([]*models.Conversation, error)
	CountConversations(ctx context.Context) (int, error)
	CountOpenConversations(ctx context.Context) (int, error)
	CountHandoffConversations(ctx context.Context) (int, error)
}

// MessageStorage - per-conversation message history
type MessageStorage interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	// GetRecentMessages returns the last n messages of a conversation in
	// chronological order (oldest first).
	GetRecentMessages(ctx context.Context, conversationID string, n int) ([]*models.Message, error)
	GetLastMessage(ctx context.Context, conversationID string) (*models.Message, error)
	ListMessages(ctx context.Context, opts *ListOptions) ([]*models.Message, error)
	CountMessages(ctx context.Context) (int, error)
	CountMessagesByPlatform(ctx context.Context) (map[string]int, error)
	CountMessagesSince(ctx context.Context, since time.Time) (int, error)
}

// LeadStorage - captured sales leads
type LeadStorage interface {
	SaveLead(ctx context.Context, lead *models.Lead) error
	GetLead(ctx context.Context, id string) (*models.Lead, error)
	ListLeads(ctx context.Context, opts *ListOptions) ([]*models.Lead, error)
	CountLeads(ctx context.Context) (int, error)
	CountLeadsByPlatform(ctx context.Context) (map[string]int, error)
}

// AccountStorage - admin console accounts
type AccountStorage interface {
	SaveAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// KnowledgeStorage - knowledge documents and their retrieval chunks
type KnowledgeStorage interface {
	SaveDocument(ctx context.Context, doc *models.KnowledgeDocument) error
	GetDocument(ctx context.Context, id string) (*models.KnowledgeDocument, error)
	// DeleteDocument removes a document and its chunks. Unknown IDs are a no-op.
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]*models.KnowledgeDocument, error)

	SaveChunks(ctx context.Context, chunks []*models.KnowledgeChunk) error
	GetChunks(ctx context.Context, docID string) ([]*models.KnowledgeChunk, error)
	AllChunks(ctx context.Context) ([]*models.KnowledgeChunk, error)
	CountChunks(ctx context.Context) (int, error)
}

// WorkflowStorage - operator rules and flows
type WorkflowStorage interface {
	SaveRule(ctx context.Context, rule *models.WorkflowRule) error
	GetRule(ctx context.Context, id string) (*models.WorkflowRule, error)
	DeleteRule(ctx context.Context, id string) error
	// ListRules returns all rules ordered by Position ascending.
	ListRules(ctx context.Context) ([]*models.WorkflowRule, error)
	CountRules(ctx context.Context) (int, error)

	SaveFlow(ctx context.Context, flow *models.Flow) error
	DeleteFlow(ctx context.Context, id string) error
	ListFlows(ctx context.Context) ([]*models.Flow, error)
}

// CampaignStorage - broadcast campaigns
type CampaignStorage interface {
	SaveCampaign(ctx context.Context, campaign *models.Campaign) error
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]*models.Campaign, error)
}

// AuditStorage - append-only audit records
type AuditStorage interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	ListEntries(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	UserStorage() UserStorage
	ConversationStorage() ConversationStorage
	MessageStorage() MessageStorage
	LeadStorage() LeadStorage
	AccountStorage() AccountStorage
	KnowledgeStorage() KnowledgeStorage
	WorkflowStorage() WorkflowStorage
	CampaignStorage() CampaignStorage
	AuditStorage() AuditStorage
	KVStorage() KeyValueStorage
	DB() interface{}
	Close() error
}
