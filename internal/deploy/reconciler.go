package deploy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slotshift/slotshift/internal/domain"
	"github.com/slotshift/slotshift/internal/logging"
)

// Reconciler decides whether a setting write is needed and performs it.
// It is idempotent: when the slot already carries the desired value it
// returns without touching the provider, so re-running a deployment
// after a partial failure is always safe.
type Reconciler struct {
	client SlotClient
	logger zerolog.Logger
}

// NewReconciler creates a Reconciler over the given slot client.
func NewReconciler(client SlotClient, logger zerolog.Logger) *Reconciler {
	return &Reconciler{client: client, logger: logger}
}

// Reconcile fetches the slot's current settings, compares the existing
// value for change.Name against change.Value, and writes the full merged
// settings map when they differ. An absent key is never equal to any
// desired value, including the empty string.
//
// In dry-run mode the intended change is reported without any write;
// dry-run is side-effect-free by construction.
//
// Provider failures during fetch or write are returned wrapped with
// target and setting context; there is no local recovery.
func (r *Reconciler) Reconcile(ctx context.Context, target domain.Target, change domain.SettingChange, dryRun bool) (domain.ReconcileResult, error) {
	settings, err := r.client.GetSlotSettings(ctx, target)
	if err != nil {
		return domain.ReconcileResult{}, fmt.Errorf("reconcile %q on %s: %w", change.Name, target, err)
	}

	current, exists := settings[change.Name]
	if exists && current == change.Value {
		r.logger.Info().
			Str("target", target.String()).
			Str("setting", change.Name).
			Msg("setting already at desired value")
		return domain.ReconcileResult{Updated: false, Message: "no change needed"}, nil
	}

	oldDisplay := describeCurrent(current, exists)
	if dryRun {
		r.logger.Info().
			Str("target", target.String()).
			Str("setting", change.Name).
			Str("current", logging.MaskValue(change.Name, oldDisplay)).
			Str("desired", logging.MaskValue(change.Name, change.Value)).
			Msg("dry run: update skipped")
		return domain.ReconcileResult{
			Updated: false,
			Message: fmt.Sprintf("dry run - would update %q from %s to '%s'", change.Name, quoteCurrent(current, exists), change.Value),
		}, nil
	}

	// The provider replaces the complete settings set on write, so the
	// new value is merged into the fresh snapshot with everything else
	// preserved verbatim.
	merged := settings.Clone()
	merged[change.Name] = change.Value

	if err = r.client.UpdateSlotSettings(ctx, target, merged); err != nil {
		return domain.ReconcileResult{}, fmt.Errorf("reconcile %q on %s: %w", change.Name, target, err)
	}

	r.logger.Info().
		Str("target", target.String()).
		Str("setting", change.Name).
		Str("value", logging.MaskValue(change.Name, change.Value)).
		Msg("setting updated")

	return domain.ReconcileResult{Updated: true, Message: fmt.Sprintf("updated %q", change.Name)}, nil
}

// describeCurrent renders the existing value for logging; an absent key
// is shown distinctly from an empty value.
func describeCurrent(current string, exists bool) string {
	if !exists {
		return "(not set)"
	}
	return current
}

// quoteCurrent renders the existing value for the operator message.
func quoteCurrent(current string, exists bool) string {
	if !exists {
		return "(not set)"
	}
	return fmt.Sprintf("'%s'", current)
}
