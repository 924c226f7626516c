package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/slotshift/slotshift/internal/clock"
	"github.com/slotshift/slotshift/internal/constants"
	"github.com/slotshift/slotshift/internal/domain"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

// Confirmer asks the operator to approve a multi-target run before any
// provider call is made. internal/tui provides the interactive
// implementation; tests provide fakes.
type Confirmer interface {
	// Confirm returns true when the operator approved the run.
	Confirm(targets []domain.Target, change domain.SettingChange) (bool, error)
}

// RunParams describes one deployment run.
type RunParams struct {
	// Targets are the deployment units. Duplicates are rejected.
	Targets []domain.Target

	// Change is the setting applied uniformly to every target.
	Change domain.SettingChange

	// URLTemplate is the validation URL template; {target} expands to the
	// app name. Empty skips validation.
	URLTemplate string

	// ValidationBudget is the per-target health-check time budget.
	// Zero uses the default.
	ValidationBudget time.Duration

	// MaxParallel caps concurrently running units. Zero uses the default;
	// values above the hard limit are rejected.
	MaxParallel int

	// JobTimeout bounds the whole run. Zero uses the default.
	JobTimeout time.Duration

	// DryRun reports intended changes without mutating anything.
	DryRun bool

	// Force skips the multi-target confirmation gate.
	Force bool

	// Confirmer approves multi-target runs. Required when more than one
	// target is given without Force on a non-dry run.
	Confirmer Confirmer
}

// Orchestrator fans the deployment workflow out across targets with
// bounded parallelism and a global deadline. Every target produces
// exactly one Outcome: units that never get to start because the
// deadline expired report a synthesized timed-out outcome.
type Orchestrator struct {
	client   SlotClient
	httpDoer Doer
	clock    clock.Clock
	logger   zerolog.Logger
	metrics  Metrics
}

// NewOrchestrator creates an Orchestrator over the given slot client.
// httpDoer is the client used for health checks; nil uses a default
// http.Client.
func NewOrchestrator(client SlotClient, httpDoer Doer, clk clock.Clock, logger zerolog.Logger, metrics Metrics) *Orchestrator {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Orchestrator{
		client:   client,
		httpDoer: httpDoer,
		clock:    clk,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run executes the deployment across all targets and returns the
// aggregated report. Per-target failures are data inside the report, not
// errors; an error return means the run never started (invalid
// parameters or a declined confirmation).
func (o *Orchestrator) Run(ctx context.Context, p RunParams) (domain.Report, error) {
	runID := uuid.NewString()
	logger := o.logger.With().Str("run_id", runID).Logger()

	report := domain.Report{
		RunID:  runID,
		Total:  len(p.Targets),
		DryRun: p.DryRun,
	}

	maxParallel, err := resolveRunParams(&p)
	if err != nil {
		return report, err
	}

	if err = o.confirmRun(p); err != nil {
		return report, err
	}

	logger.Info().
		Int("targets", len(p.Targets)).
		Str("setting", p.Change.Name).
		Int("max_parallel", maxParallel).
		Dur("job_timeout", p.JobTimeout).
		Bool("dry_run", p.DryRun).
		Msg("deployment run started")

	runCtx, cancel := context.WithTimeout(ctx, p.JobTimeout)
	defer cancel()

	start := o.clock.Now()
	sem := semaphore.NewWeighted(int64(maxParallel))
	results := make(chan domain.Outcome, len(p.Targets))

	for _, target := range p.Targets {
		go func(t domain.Target) {
			// A unit that never acquires a slot before the deadline still
			// owes its outcome.
			if acquireErr := sem.Acquire(runCtx, 1); acquireErr != nil {
				results <- domain.Outcome{
					Target:  t.String(),
					Success: false,
					Message: fmt.Sprintf("timed out before starting: %v", acquireErr),
					DryRun:  p.DryRun,
				}
				return
			}
			defer sem.Release(1)

			unit := NewUnit(UnitParams{
				Target:           t,
				Change:           p.Change,
				Client:           o.client,
				Validator:        NewValidator(o.httpDoer, o.clock, logger),
				URLTemplate:      p.URLTemplate,
				ValidationBudget: p.ValidationBudget,
				DryRun:           p.DryRun,
				Clock:            o.clock,
				Logger:           logger,
				Metrics:          o.metrics,
			})
			results <- unit.Run(runCtx)
		}(target)
	}

	for completed := 1; completed <= len(p.Targets); completed++ {
		outcome := <-results
		report.Append(outcome)
		logger.Info().
			Str("target", outcome.Target).
			Bool("success", outcome.Success).
			Int("completed", completed).
			Int("total", report.Total).
			Msg("target finished")
	}

	report.Duration = o.clock.Now().Sub(start)
	logger.Info().
		Int("succeeded", len(report.Succeeded)).
		Int("failed", len(report.Failed)).
		Dur("duration", report.Duration).
		Msg("deployment run finished")

	return report, nil
}

// confirmRun applies the multi-target confirmation gate. Single-target
// runs, dry runs, and forced runs proceed without asking.
func (o *Orchestrator) confirmRun(p RunParams) error {
	if len(p.Targets) <= 1 || p.DryRun || p.Force {
		return nil
	}
	if p.Confirmer == nil {
		return fmt.Errorf("%w: %d targets require confirmation or --force", sserrors.ErrNonInteractiveConfirm, len(p.Targets))
	}
	confirmed, err := p.Confirmer.Confirm(p.Targets, p.Change)
	if err != nil {
		return fmt.Errorf("confirm run: %w", err)
	}
	if !confirmed {
		return fmt.Errorf("%w: operator declined", sserrors.ErrRunAborted)
	}
	return nil
}

// resolveRunParams validates the run parameters and applies defaults,
// returning the effective parallelism.
func resolveRunParams(p *RunParams) (int, error) {
	if len(p.Targets) == 0 {
		return 0, fmt.Errorf("%w: at least one target is required", sserrors.ErrConfigInvalid)
	}
	seen := make(map[string]bool, len(p.Targets))
	for _, t := range p.Targets {
		if err := t.Validate(); err != nil {
			return 0, err
		}
		key := t.String()
		if seen[key] {
			return 0, fmt.Errorf("%w: duplicate target %s", sserrors.ErrConfigInvalid, t)
		}
		seen[key] = true
	}
	if err := p.Change.Validate(); err != nil {
		return 0, err
	}

	maxParallel := p.MaxParallel
	if maxParallel == 0 {
		maxParallel = constants.DefaultMaxParallel
	}
	if maxParallel < 1 || maxParallel > constants.MaxParallelLimit {
		return 0, fmt.Errorf("%w: max parallel %d must be between 1 and %d",
			sserrors.ErrConfigInvalid, maxParallel, constants.MaxParallelLimit)
	}
	if p.JobTimeout <= 0 {
		p.JobTimeout = constants.DefaultJobTimeout
	}
	if p.ValidationBudget <= 0 {
		p.ValidationBudget = constants.DefaultValidationTimeout
	}
	return maxParallel, nil
}
