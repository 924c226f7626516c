package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/slotshift/slotshift/internal/domain"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

// Plan is a deploy plan file: the setting change plus the full target
// list for one run. Plans let a release pipeline check the deployment
// definition into source control instead of assembling flags.
//
// Example:
//
//	setting:
//	  name: API_VERSION
//	  value: v2
//	validationUrl: https://{target}-staging.azurewebsites.net/healthz
//	targets:
//	  - name: orders-api
//	    resourceGroup: rg-prod
//	    sourceSlot: staging
type Plan struct {
	// Setting is the change applied uniformly to every target.
	Setting domain.SettingChange `yaml:"setting"`

	// ValidationURL optionally overrides the configured URL template.
	ValidationURL string `yaml:"validationUrl"`

	// Targets are the deployment units.
	Targets []domain.Target `yaml:"targets"`
}

// LoadPlan reads and validates a deploy plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from an operator flag
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", sserrors.ErrPlanInvalid, path, err)
	}

	var plan Plan
	if err = yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", sserrors.ErrPlanInvalid, path, err)
	}

	if err = plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", sserrors.ErrPlanInvalid, path, err)
	}
	return &plan, nil
}

// Validate checks the plan's setting, targets, and uniqueness.
func (p *Plan) Validate() error {
	if err := p.Setting.Validate(); err != nil {
		return err
	}
	if len(p.Targets) == 0 {
		return fmt.Errorf("%w: plan has no targets", sserrors.ErrConfigInvalid)
	}

	seen := make(map[string]bool, len(p.Targets))
	for _, t := range p.Targets {
		if err := t.Validate(); err != nil {
			return err
		}
		key := t.String()
		if seen[key] {
			return fmt.Errorf("%w: duplicate target %s", sserrors.ErrConfigInvalid, t)
		}
		seen[key] = true
	}
	return nil
}
