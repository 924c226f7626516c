// Package config provides configuration management for SlotShift.
//
// Configuration is resolved in the following order (highest precedence
// first):
//  1. CLI flags
//  2. Environment variables (SLOTSHIFT_* prefix)
//  3. Project config (.slotshift/config.yaml)
//  4. Global config (~/.slotshift/config.yaml)
//  5. Built-in defaults
package config

import (
	"time"

	"github.com/slotshift/slotshift/internal/constants"
)

// Config is the resolved SlotShift configuration.
type Config struct {
	// Azure holds provider connection settings.
	Azure AzureConfig `mapstructure:"azure" yaml:"azure"`

	// Deploy holds deployment run settings.
	Deploy DeployConfig `mapstructure:"deploy" yaml:"deploy"`

	// Output selects the report format: "text" or "json".
	Output string `mapstructure:"output" yaml:"output"`
}

// AzureConfig holds provider connection settings.
type AzureConfig struct {
	// SubscriptionID is the Azure subscription containing the targets.
	SubscriptionID string `mapstructure:"subscription_id" yaml:"subscription_id"`
}

// DeployConfig holds deployment run settings.
type DeployConfig struct {
	// MaxParallel caps concurrently running deployment units.
	MaxParallel int `mapstructure:"max_parallel" yaml:"max_parallel"`

	// JobTimeout bounds an entire deployment run.
	JobTimeout time.Duration `mapstructure:"job_timeout" yaml:"job_timeout"`

	// ValidationTimeout is the per-target health-check time budget.
	ValidationTimeout time.Duration `mapstructure:"validation_timeout" yaml:"validation_timeout"`

	// ValidationURL is the health-check URL template; {target} expands to
	// the app name. Empty skips validation.
	ValidationURL string `mapstructure:"validation_url" yaml:"validation_url"`
}

// Output formats.
const (
	// OutputText renders the run report as styled terminal text.
	OutputText = "text"

	// OutputJSON renders the run report as a JSON document.
	OutputJSON = "json"
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Deploy: DeployConfig{
			MaxParallel:       constants.DefaultMaxParallel,
			JobTimeout:        constants.DefaultJobTimeout,
			ValidationTimeout: constants.DefaultValidationTimeout,
		},
		Output: OutputText,
	}
}
