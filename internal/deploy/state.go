// Phase state machine for deployment units.
//
// Phases advance strictly forward and only on success; errors do not
// transition phases, they terminate the unit with an Outcome. The
// recorded phase history is the audit trail for each target.
package deploy

import (
	"fmt"
	"time"

	"github.com/slotshift/slotshift/internal/constants"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

// ValidTransitions defines all allowed phase transitions in the
// deployment workflow. Format: from_phase -> []to_phases.
//
// The workflow is strictly sequential with a single branch after the
// swap preview:
//
//	start → prerequisites_checked → slot_validated → setting_reconciled
//	      → swap_preview_started → validation_passed → swap_completed
//	                             → validation_failed → swap_rolled_back
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.UnitPhase][]constants.UnitPhase{
	constants.PhaseStart:                {constants.PhasePrerequisitesChecked},
	constants.PhasePrerequisitesChecked: {constants.PhaseSlotValidated},
	constants.PhaseSlotValidated:        {constants.PhaseSettingReconciled},
	constants.PhaseSettingReconciled:    {constants.PhaseSwapPreviewStarted},
	constants.PhaseSwapPreviewStarted:   {constants.PhaseValidationPassed, constants.PhaseValidationFailed},
	constants.PhaseValidationPassed:     {constants.PhaseSwapCompleted},
	constants.PhaseValidationFailed:     {constants.PhaseSwapRolledBack},
}

// terminalPhases are phases with no outgoing transitions.
//
//nolint:gochecknoglobals // Read-only lookup table
var terminalPhases = map[constants.UnitPhase]bool{
	constants.PhaseSwapCompleted:  true,
	constants.PhaseSwapRolledBack: true,
}

// PhaseChange records one phase transition for the audit trail.
type PhaseChange struct {
	// From is the phase the unit left.
	From constants.UnitPhase `json:"from"`

	// To is the phase the unit entered.
	To constants.UnitPhase `json:"to"`

	// At is when the transition happened (UTC).
	At time.Time `json:"at"`

	// Reason is a short operator-facing explanation.
	Reason string `json:"reason"`
}

// IsValidTransition checks whether a transition between two phases is
// allowed. Identity transitions and transitions out of terminal phases
// are invalid.
func IsValidTransition(from, to constants.UnitPhase) bool {
	if from == to {
		return false
	}
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminalPhase reports whether no further transitions are allowed.
func IsTerminalPhase(phase constants.UnitPhase) bool {
	return terminalPhases[phase]
}

// SwapBegun reports whether the phase is at or past swap_preview_started,
// meaning a failure now requires a best-effort swap cancel.
func SwapBegun(phase constants.UnitPhase) bool {
	switch phase {
	case constants.PhaseSwapPreviewStarted,
		constants.PhaseValidationPassed,
		constants.PhaseValidationFailed:
		return true
	default:
		return false
	}
}

// advance transitions the unit to the given phase, recording the change.
// An invalid transition is a programming error surfaced as
// ErrInvalidTransition.
func (u *Unit) advance(to constants.UnitPhase, reason string) error {
	if !IsValidTransition(u.phase, to) {
		return fmt.Errorf("%w: %s → %s", sserrors.ErrInvalidTransition, u.phase, to)
	}

	change := PhaseChange{
		From:   u.phase,
		To:     to,
		At:     u.clock.Now().UTC(),
		Reason: reason,
	}
	u.history = append(u.history, change)
	u.phase = to
	u.metrics.PhaseChanged(u.target.String(), change.From, change.To)

	u.logger.Debug().
		Str("target", u.target.String()).
		Str("from", change.From.String()).
		Str("to", change.To.String()).
		Str("reason", reason).
		Msg("phase transition")

	return nil
}
