// Package domain defines the core data model for SlotShift deployments.
//
// All types here are plain structs with explicit fields. Outcomes and
// results are immutable once created: they are constructed exactly once
// at the point the fact they describe becomes known, and never mutated.
//
// Import rules:
//   - CAN import: internal/constants, internal/errors, std lib
//   - MUST NOT import: internal/deploy, internal/azure, internal/cli
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/slotshift/slotshift/internal/constants"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

// Target identifies one deployment unit: an App Service app, its resource
// group, and the non-production slot the swap starts from. Immutable once
// a deployment unit starts.
type Target struct {
	// Name is the App Service app name.
	Name string `json:"name" yaml:"name"`

	// ResourceGroup is the Azure resource group containing the app.
	ResourceGroup string `json:"resourceGroup" yaml:"resourceGroup"`

	// SourceSlot is the slot the setting is written to and swapped from.
	// One of the allowed source slots; never "production".
	SourceSlot string `json:"sourceSlot" yaml:"sourceSlot"`
}

// Validate checks the target's parameters. A failure here is a
// configuration error: terminal for the target, never retried.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: target name is required", sserrors.ErrConfigInvalid)
	}
	if strings.TrimSpace(t.ResourceGroup) == "" {
		return fmt.Errorf("%w: resource group is required for target %q", sserrors.ErrConfigInvalid, t.Name)
	}
	if !constants.IsSourceSlot(t.SourceSlot) {
		return fmt.Errorf("%w: source slot %q for target %q must be one of %v",
			sserrors.ErrConfigInvalid, t.SourceSlot, t.Name, constants.SourceSlots())
	}
	return nil
}

// String renders the target as resourceGroup/name/slot for logs and messages.
func (t Target) String() string {
	return fmt.Sprintf("%s/%s/%s", t.ResourceGroup, t.Name, t.SourceSlot)
}

// SettingChange is the application setting applied uniformly to every
// target in a run. Value may be empty; Name may not.
type SettingChange struct {
	// Name is the application setting key.
	Name string `json:"name" yaml:"name"`

	// Value is the desired value. An empty value is valid and distinct
	// from the setting being absent.
	Value string `json:"value" yaml:"value"`
}

// Validate checks the change's parameters.
func (c SettingChange) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: setting name is required", sserrors.ErrConfigInvalid)
	}
	return nil
}

// SlotConfig is a snapshot of a slot's application settings. It is
// fetched fresh at the phase that needs it and discarded afterwards;
// snapshots are never cached across phases.
type SlotConfig map[string]string

// Clone returns an independent copy of the settings map.
func (s SlotConfig) Clone() SlotConfig {
	out := make(SlotConfig, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ReconcileResult reports what the setting reconciler decided for one
// target. Updated=false is a valid, successful result (no-op or dry run).
type ReconcileResult struct {
	// Updated is true only when a write was actually performed.
	Updated bool `json:"updated"`

	// Message describes the decision in operator terms.
	Message string `json:"message"`
}

// ValidationResult reports the outcome of the bounded-retry health check
// for one target. Failures are data, never errors.
type ValidationResult struct {
	// Passed is true if any attempt returned HTTP 200.
	Passed bool `json:"passed"`

	// Attempts is the number of HTTP requests issued. Zero when
	// validation was skipped (no URL configured).
	Attempts int `json:"attempts"`

	// Elapsed is the wall-clock time spent validating.
	Elapsed time.Duration `json:"elapsed"`

	// LastError describes the most recent failed attempt, empty on pass.
	LastError string `json:"lastError,omitempty"`
}

// Outcome is the terminal record for one target. Exactly one Outcome is
// produced per target per run, even on timeout or internal failure.
type Outcome struct {
	// Target is the target's resourceGroup/name/slot identifier.
	Target string `json:"target"`

	// Success is true only for completed swaps, no-op runs, and dry runs.
	Success bool `json:"success"`

	// Message distinguishes "no change needed", "dry run", "completed",
	// "rolled back", and "timed out" outcomes for the operator.
	Message string `json:"message"`

	// DryRun records whether this outcome came from a dry run.
	DryRun bool `json:"dryRun"`

	// Duration is how long the unit ran before reaching this outcome.
	Duration time.Duration `json:"duration"`
}

// Report aggregates the outcomes of one deployment run.
// len(Succeeded)+len(Failed) == Total always holds on completion.
type Report struct {
	// RunID uniquely identifies this run in logs and output.
	RunID string `json:"runId"`

	// Total is the number of targets the run was started with.
	Total int `json:"total"`

	// Succeeded holds outcomes with Success=true, in completion order.
	Succeeded []Outcome `json:"succeeded"`

	// Failed holds outcomes with Success=false, in completion order.
	Failed []Outcome `json:"failed"`

	// DryRun records whether the run was a dry run.
	DryRun bool `json:"dryRun"`

	// Duration is the wall-clock duration of the whole run.
	Duration time.Duration `json:"duration"`
}

// Append records an outcome into the appropriate bucket.
// Outcomes arrive streaming, in whatever order targets complete.
func (r *Report) Append(o Outcome) {
	if o.Success {
		r.Succeeded = append(r.Succeeded, o)
		return
	}
	r.Failed = append(r.Failed, o)
}

// Completed reports whether every target has produced an outcome.
func (r *Report) Completed() bool {
	return len(r.Succeeded)+len(r.Failed) == r.Total
}

// RunFailed reports whether the run counts as failed overall: at least
// one failed outcome on a non-dry run. Dry runs never fail overall.
func (r *Report) RunFailed() bool {
	return !r.DryRun && len(r.Failed) > 0
}
