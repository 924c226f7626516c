package config

import (
	"fmt"

	"github.com/slotshift/slotshift/internal/constants"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

// Validate checks the configuration for invalid values. Out-of-range
// limits are rejected, never clamped, so a typo fails loudly instead of
// silently running with different parallelism than the operator asked
// for.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", sserrors.ErrConfigInvalid)
	}

	if cfg.Deploy.MaxParallel < 1 || cfg.Deploy.MaxParallel > constants.MaxParallelLimit {
		return fmt.Errorf("%w: deploy.max_parallel %d must be between 1 and %d",
			sserrors.ErrConfigInvalid, cfg.Deploy.MaxParallel, constants.MaxParallelLimit)
	}
	if cfg.Deploy.JobTimeout <= 0 {
		return fmt.Errorf("%w: deploy.job_timeout must be positive", sserrors.ErrConfigInvalid)
	}
	if cfg.Deploy.ValidationTimeout <= 0 {
		return fmt.Errorf("%w: deploy.validation_timeout must be positive", sserrors.ErrConfigInvalid)
	}

	switch cfg.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("%w: %q (must be %q or %q)",
			sserrors.ErrInvalidOutputFormat, cfg.Output, OutputText, OutputJSON)
	}

	return nil
}
