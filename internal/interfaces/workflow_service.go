package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// WorkflowService manages operator rules and applies them to replies.
type WorkflowService interface {
	CreateRule(ctx context.Context, name string, keywords []string, action string) (*models.WorkflowRule, error)
	UpdateRule(ctx context.Context, rule *models.WorkflowRule) error
	DeleteRule(ctx context.Context, id string) error
	ListRules(ctx context.Context) ([]*models.WorkflowRule, error)

	// ApplyRules evaluates enabled rules against the inbound message in
	// position order. When several rules match, the last match wins. An
	// "auto_reply:" action replaces generatedReply with the action suffix;
	// an empty suffix keeps the generated reply. Returns the final reply
	// and the winning rule, if any.
	ApplyRules(ctx context.Context, message, generatedReply string) (string, *models.WorkflowRule, error)

	// SeedFromDir loads YAML rule files from a directory on startup.
	// Missing directories are ignored.
	SeedFromDir(ctx context.Context, dir string) error

	CreateFlow(ctx context.Context, name string, nodes []map[string]interface{}) (*models.Flow, error)
	DeleteFlow(ctx context.Context, id string) error
	ListFlows(ctx context.Context) ([]*models.Flow, error)
}
