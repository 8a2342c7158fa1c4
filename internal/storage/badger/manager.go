package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db           *BadgerDB
	user         interfaces.UserStorage
	conversation interfaces.ConversationStorage
	message      interfaces.MessageStorage
	lead         interfaces.LeadStorage
	account      interfaces.AccountStorage
	knowledge    interfaces.KnowledgeStorage
	workflow     interfaces.WorkflowStorage
	campaign     interfaces.CampaignStorage
	audit        interfaces.AuditStorage
	kv           interfaces.KeyValueStorage
	logger       arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:           db,
		user:         NewUserStorage(db, logger),
		conversation: NewConversationStorage(db, logger),
		message:      NewMessageStorage(db, logger),
		lead:         NewLeadStorage(db, logger),
		account:      NewAccountStorage(db, logger),
		knowledge:    NewKnowledgeStorage(db, logger),
		workflow:     NewWorkflowStorage(db, logger),
		campaign:     NewCampaignStorage(db, logger),
		audit:        NewAuditStorage(db, logger),
		kv:           NewKVStorage(db, logger),
		logger:       logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// UserStorage returns the User storage interface
func (m *Manager) UserStorage() interfaces.UserStorage {
	return m.user
}

// ConversationStorage returns the Conversation storage interface
func (m *Manager) ConversationStorage() interfaces.ConversationStorage {
	return m.conversation
}

// MessageStorage returns the Message storage interface
func (m *Manager) MessageStorage() interfaces.MessageStorage {
	return m.message
}

// LeadStorage returns the Lead storage interface
func (m *Manager) LeadStorage() interfaces.LeadStorage {
	return m.lead
}

// AccountStorage returns the Account storage interface
func (m *Manager) AccountStorage() interfaces.AccountStorage {
	return m.account
}

// KnowledgeStorage returns the Knowledge storage interface
func (m *Manager) KnowledgeStorage() interfaces.KnowledgeStorage {
	return m.knowledge
}

// WorkflowStorage returns the Workflow storage interface
func (m *Manager) WorkflowStorage() interfaces.WorkflowStorage {
	return m.workflow
}

// CampaignStorage returns the Campaign storage interface
func (m *Manager) CampaignStorage() interfaces.CampaignStorage {
	return m.campaign
}

// AuditStorage returns the Audit storage interface
func (m *Manager) AuditStorage() interfaces.AuditStorage {
	return m.audit
}

// KVStorage returns the KeyValue storage interface
func (m *Manager) KVStorage() interfaces.KeyValueStorage {
	return m.kv
}

// DB returns the underlying database connection
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
