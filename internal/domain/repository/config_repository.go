package repository

import (
	"github.com/diillson/ticket-region-reports/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration files
// and environment overrides.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
	LoadEnv() (*types.Config, error)
	Validate(config *types.Config) error
}
