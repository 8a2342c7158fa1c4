package config

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
)

// Service serves immutable configuration snapshots and resolves runtime
// settings with environment variable priority.
type Service struct {
	config    *common.Config
	kvStorage interfaces.KeyValueStorage
	logger    arbor.ILogger
}

var _ interfaces.ConfigService = (*Service)(nil)

// NewService creates a config service. kvStorage may be nil, in which case
// setting resolution falls back to environment variables and config values.
func NewService(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Service{
		config:    config,
		kvStorage: kvStorage,
		logger:    logger,
	}, nil
}

// GetConfig returns a deep clone so callers can never mutate the live snapshot.
func (s *Service) GetConfig(ctx context.Context) (interface{}, error) {
	return common.DeepCloneConfig(s.config), nil
}

// ResolveSetting resolves a named setting: environment → KV store → fallback.
func (s *Service) ResolveSetting(ctx context.Context, name, fallback string) (string, error) {
	return common.ResolveSetting(ctx, s.kvStorage, name, fallback)
}
