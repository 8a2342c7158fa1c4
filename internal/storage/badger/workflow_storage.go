package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// WorkflowStorage implements interfaces.WorkflowStorage using BadgerDB
type WorkflowStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewWorkflowStorage creates a new workflow storage instance
func NewWorkflowStorage(db *BadgerDB, logger arbor.ILogger) interfaces.WorkflowStorage {
	return &WorkflowStorage{
		db:     db,
		logger: logger,
	}
}

func (s *WorkflowStorage) SaveRule(ctx context.Context, rule *models.WorkflowRule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule ID cannot be empty")
	}
	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	if err := s.db.store.Upsert(rule.ID, rule); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

func (s *WorkflowStorage) GetRule(ctx context.Context, id string) (*models.WorkflowRule, error) {
	var rule models.WorkflowRule
	if err := s.db.store.Get(id, &rule); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("rule not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rule, nil
}

func (s *WorkflowStorage) DeleteRule(ctx context.Context, id string) error {
	if err := s.db.store.Delete(id, &models.WorkflowRule{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("rule not found: %s", id)
		}
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

// ListRules returns rules in position order, oldest definitions first.
func (s *WorkflowStorage) ListRules(ctx context.Context) ([]*models.WorkflowRule, error) {
	var rules []*models.WorkflowRule
	query := badgerhold.Where("ID").Ne("").SortBy("Position")
	if err := s.db.store.Find(&rules, query); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

func (s *WorkflowStorage) CountRules(ctx context.Context) (int, error) {
	count, err := s.db.store.Count(&models.WorkflowRule{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return int(count), nil
}

func (s *WorkflowStorage) SaveFlow(ctx context.Context, flow *models.Flow) error {
	if flow.ID == "" {
		return fmt.Errorf("flow ID cannot be empty")
	}
	now := time.Now()
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}
	flow.UpdatedAt = now

	if err := s.db.store.Upsert(flow.ID, flow); err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}
	return nil
}

func (s *WorkflowStorage) DeleteFlow(ctx context.Context, id string) error {
	if err := s.db.store.Delete(id, &models.Flow{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("flow not found: %s", id)
		}
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}

func (s *WorkflowStorage) ListFlows(ctx context.Context) ([]*models.Flow, error) {
	var flows []*models.Flow
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt")
	if err := s.db.store.Find(&flows, query); err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	return flows, nil
}
