package interfaces

import "context"

// ConfigService serves immutable configuration snapshots.
// Note: GetConfig returns interface{} to avoid an import cycle with
// common.Config. Implementations return *common.Config; callers type assert.
type ConfigService interface {
	// GetConfig returns a deep clone of the running configuration so
	// callers can never mutate the live snapshot.
	GetConfig(ctx context.Context) (interface{}, error)

	// ResolveSetting resolves a runtime setting (env → KV store → config).
	ResolveSetting(ctx context.Context, name, fallback string) (string, error)
}
