package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/slotshift/slotshift/internal/clock"
	"github.com/slotshift/slotshift/internal/constants"
	"github.com/slotshift/slotshift/internal/domain"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

// rollbackTimeout bounds the best-effort swap cancel that runs after a
// failed validation. It is independent of the run's own deadline so a
// canceled run can still roll back.
const rollbackTimeout = 5 * time.Minute

// UnitParams carries everything a deployment unit needs. Client, Target,
// and Change are required; the rest default to production values when
// zero.
type UnitParams struct {
	Target           domain.Target
	Change           domain.SettingChange
	Client           SlotClient
	Validator        *Validator
	URLTemplate      string
	ValidationBudget time.Duration
	DryRun           bool
	Clock            clock.Clock
	Logger           zerolog.Logger
	Metrics          Metrics
}

// Unit runs the full deployment workflow for a single target: check
// prerequisites, confirm the slot, reconcile the setting, preview the
// swap, validate health, then complete or roll back. A Unit is used for
// exactly one run and always produces exactly one Outcome.
type Unit struct {
	target           domain.Target
	change           domain.SettingChange
	client           SlotClient
	reconciler       *Reconciler
	validator        *Validator
	urlTemplate      string
	validationBudget time.Duration
	dryRun           bool

	phase   constants.UnitPhase
	history []PhaseChange
	clock   clock.Clock
	logger  zerolog.Logger
	metrics Metrics
}

// NewUnit creates a deployment unit in the start phase.
func NewUnit(p UnitParams) *Unit {
	if p.Clock == nil {
		p.Clock = clock.RealClock{}
	}
	if p.Metrics == nil {
		p.Metrics = NoopMetrics{}
	}
	if p.ValidationBudget <= 0 {
		p.ValidationBudget = constants.DefaultValidationTimeout
	}
	if p.Validator == nil {
		p.Validator = NewValidator(nil, p.Clock, p.Logger)
	}
	return &Unit{
		target:           p.Target,
		change:           p.Change,
		client:           p.Client,
		reconciler:       NewReconciler(p.Client, p.Logger),
		validator:        p.Validator,
		urlTemplate:      p.URLTemplate,
		validationBudget: p.ValidationBudget,
		dryRun:           p.DryRun,
		phase:            constants.PhaseStart,
		clock:            p.Clock,
		logger:           p.Logger.With().Str("target", p.Target.String()).Logger(),
		metrics:          p.Metrics,
	}
}

// Phase returns the unit's current phase.
func (u *Unit) Phase() constants.UnitPhase {
	return u.phase
}

// History returns the recorded phase transitions in order.
func (u *Unit) History() []PhaseChange {
	return u.history
}

// Run executes the workflow to its terminal outcome. It never panics and
// never returns an error: every failure mode, including cancellation, is
// folded into the returned Outcome.
func (u *Unit) Run(ctx context.Context) domain.Outcome {
	start := u.clock.Now()
	u.metrics.UnitStarted(u.target.String())
	u.logger.Info().
		Str("setting", u.change.Name).
		Bool("dry_run", u.dryRun).
		Msg("deployment unit started")

	outcome := u.run(ctx)
	outcome.Target = u.target.String()
	outcome.DryRun = u.dryRun
	outcome.Duration = u.clock.Now().Sub(start)

	u.metrics.UnitCompleted(u.target.String(), outcome.Success, outcome.Duration)
	event := u.logger.Info()
	if !outcome.Success {
		event = u.logger.Error()
	}
	event.
		Bool("success", outcome.Success).
		Str("message", outcome.Message).
		Dur("duration", outcome.Duration).
		Msg("deployment unit finished")

	return outcome
}

func (u *Unit) run(ctx context.Context) domain.Outcome {
	if err := u.checkPrerequisites(); err != nil {
		return u.fail(err)
	}

	if err := ctx.Err(); err != nil {
		return u.fail(fmt.Errorf("before slot check: %w", err))
	}
	if err := u.client.GetSlot(ctx, u.target); err != nil {
		return u.fail(err)
	}
	if err := u.advance(constants.PhaseSlotValidated, "source slot exists"); err != nil {
		return u.fail(err)
	}

	result, err := u.reconciler.Reconcile(ctx, u.target, u.change, u.dryRun)
	if err != nil {
		return u.fail(err)
	}
	if err = u.advance(constants.PhaseSettingReconciled, result.Message); err != nil {
		return u.fail(err)
	}

	// A dry run goes no further: everything from the swap preview on has
	// side effects. A no-op reconcile also ends here since nothing
	// changed that a swap could promote.
	if u.dryRun || !result.Updated {
		return domain.Outcome{Success: true, Message: result.Message}
	}

	if err = ctx.Err(); err != nil {
		return u.fail(fmt.Errorf("before swap preview: %w", err))
	}
	if err = u.client.BeginSwapPreview(ctx, u.target); err != nil {
		return u.fail(err)
	}
	if err = u.advance(constants.PhaseSwapPreviewStarted, "swap preview started"); err != nil {
		return u.fail(err)
	}

	url := RenderValidationURL(u.urlTemplate, u.target)
	validation := u.validator.Validate(ctx, url, u.validationBudget, u.target.String())
	u.metrics.ValidationAttempts(u.target.String(), validation.Attempts)

	if !validation.Passed {
		return u.rollBack(validation)
	}

	if err = u.advance(constants.PhaseValidationPassed, validationReason(validation)); err != nil {
		return u.fail(err)
	}

	// A failed completion is terminal without a rollback attempt: the
	// swap may be partially applied on the provider side and canceling
	// it here could make things worse. The operator resolves it.
	if err = u.client.CompleteSwap(ctx, u.target); err != nil {
		return domain.Outcome{Success: false, Message: err.Error()}
	}
	if err = u.advance(constants.PhaseSwapCompleted, "swap completed"); err != nil {
		return u.fail(err)
	}

	return domain.Outcome{Success: true, Message: "completed"}
}

// rollBack cancels the previewed swap after a failed validation. The
// cancel runs on its own context so it proceeds even when the run's
// deadline has already expired.
func (u *Unit) rollBack(validation domain.ValidationResult) domain.Outcome {
	if err := u.advance(constants.PhaseValidationFailed, validation.LastError); err != nil {
		return u.fail(err)
	}

	cancelCtx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
	defer cancel()

	if err := u.client.CancelSwap(cancelCtx, u.target); err != nil {
		return domain.Outcome{
			Success: false,
			Message: fmt.Sprintf("validation failed after %d attempt(s) and rollback failed: %v", validation.Attempts, err),
		}
	}
	if err := u.advance(constants.PhaseSwapRolledBack, "swap canceled"); err != nil {
		return u.fail(err)
	}

	return domain.Outcome{
		Success: false,
		Message: fmt.Sprintf("rolled back: validation failed after %d attempt(s): %s", validation.Attempts, validation.LastError),
	}
}

// checkPrerequisites validates the unit's parameters before any provider
// call.
func (u *Unit) checkPrerequisites() error {
	if u.client == nil {
		return fmt.Errorf("%w: slot client is required", sserrors.ErrConfigInvalid)
	}
	if err := u.target.Validate(); err != nil {
		return err
	}
	if err := u.change.Validate(); err != nil {
		return err
	}
	return u.advance(constants.PhasePrerequisitesChecked, "parameters validated")
}

// fail builds a failure outcome from an error. Any previewed swap is
// canceled best-effort first; a cancel failure is appended to the
// message rather than replacing it.
func (u *Unit) fail(err error) domain.Outcome {
	message := err.Error()

	if SwapBegun(u.phase) {
		cancelCtx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
		defer cancel()
		if cancelErr := u.client.CancelSwap(cancelCtx, u.target); cancelErr != nil {
			message = fmt.Sprintf("%s (rollback also failed: %v)", message, cancelErr)
		} else {
			u.logger.Warn().Msg("previewed swap canceled after failure")
		}
	}

	return domain.Outcome{Success: false, Message: message}
}

func validationReason(v domain.ValidationResult) string {
	if v.Attempts == 0 {
		return "validation skipped, no URL configured"
	}
	return fmt.Sprintf("validation passed after %d attempt(s)", v.Attempts)
}
