package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"gopkg.in/yaml.v3"
)

// Service implements interfaces.WorkflowService.
type Service struct {
	storage interfaces.WorkflowStorage
	logger  arbor.ILogger
}

var _ interfaces.WorkflowService = (*Service)(nil)

// NewService creates a new workflow service
func NewService(storage interfaces.WorkflowStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

func (s *Service) CreateRule(ctx context.Context, name string, keywords []string, action string) (*models.WorkflowRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("rule must have at least one keyword")
	}

	count, err := s.storage.CountRules(ctx)
	if err != nil {
		return nil, err
	}

	rule := &models.WorkflowRule{
		ID:       common.NewRuleID(),
		Name:     name,
		Keywords: keywords,
		Action:   action,
		Enabled:  true,
		Position: count,
	}
	if err := s.storage.SaveRule(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info().Str("rule_id", rule.ID).Str("name", name).Msg("Created workflow rule")
	return rule, nil
}

func (s *Service) UpdateRule(ctx context.Context, rule *models.WorkflowRule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule ID cannot be empty")
	}
	// Confirm the rule exists so updates never create phantom rules
	if _, err := s.storage.GetRule(ctx, rule.ID); err != nil {
		return err
	}
	return s.storage.SaveRule(ctx, rule)
}

func (s *Service) DeleteRule(ctx context.Context, id string) error {
	return s.storage.DeleteRule(ctx, id)
}

func (s *Service) ListRules(ctx context.Context) ([]*models.WorkflowRule, error) {
	return s.storage.ListRules(ctx)
}

// ApplyRules evaluates enabled rules in position order against the message.
// The last matching rule wins. An "auto_reply:" action replaces the
// generated reply with the action suffix.
func (s *Service) ApplyRules(ctx context.Context, message, generatedReply string) (string, *models.WorkflowRule, error) {
	rules, err := s.storage.ListRules(ctx)
	if err != nil {
		return generatedReply, nil, err
	}

	lowered := strings.ToLower(message)
	var winner *models.WorkflowRule
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if rule.Matches(lowered) {
			winner = rule
		}
	}

	if winner == nil {
		return generatedReply, nil, nil
	}

	finalReply := generatedReply
	if text, ok := strings.CutPrefix(winner.Action, models.AutoReplyPrefix); ok {
		if text = strings.TrimSpace(text); text != "" {
			finalReply = text
		}
	}

	s.logger.Debug().
		Str("rule_id", winner.ID).
		Str("name", winner.Name).
		Msg("Workflow rule matched")

	return finalReply, winner, nil
}

// seedFile is the YAML layout for rule seed files.
type seedFile struct {
	Rules []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
		Action   string   `yaml:"action"`
	} `yaml:"rules"`
}

// SeedFromDir loads YAML rule files from dir. Rules whose name already
// exists are skipped so restarts don't duplicate them. A missing directory
// is not an error.
func (s *Service) SeedFromDir(ctx context.Context, dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read seed directory: %w", err)
	}

	existing, err := s.storage.ListRules(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, rule := range existing {
		known[rule.Name] = struct{}{}
	}

	seeded := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Failed to read seed file")
			continue
		}

		var seed seedFile
		if err := yaml.Unmarshal(data, &seed); err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Failed to parse seed file")
			continue
		}

		for _, raw := range seed.Rules {
			if raw.Name == "" || len(raw.Keywords) == 0 {
				continue
			}
			if _, ok := known[raw.Name]; ok {
				continue
			}
			if _, err := s.CreateRule(ctx, raw.Name, raw.Keywords, raw.Action); err != nil {
				s.logger.Warn().Err(err).Str("rule", raw.Name).Msg("Failed to seed rule")
				continue
			}
			known[raw.Name] = struct{}{}
			seeded++
		}
	}

	if seeded > 0 {
		s.logger.Info().Int("count", seeded).Str("dir", dir).Msg("Seeded workflow rules")
	}
	return nil
}

func (s *Service) CreateFlow(ctx context.Context, name string, nodes []map[string]interface{}) (*models.Flow, error) {
	if name == "" {
		return nil, fmt.Errorf("flow name cannot be empty")
	}
	flow := &models.Flow{
		ID:    common.NewFlowID(),
		Name:  name,
		Nodes: nodes,
	}
	if err := s.storage.SaveFlow(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

func (s *Service) DeleteFlow(ctx context.Context, id string) error {
	return s.storage.DeleteFlow(ctx, id)
}

func (s *Service) ListFlows(ctx context.Context) ([]*models.Flow, error) {
	return s.storage.ListFlows(ctx)
}
