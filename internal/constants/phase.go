package constants

// UnitPhase identifies one state in the deployment unit workflow.
// Phases advance strictly forward; the only branch is the promotion
// decision after validation.
type UnitPhase string

// Deployment unit phases, in workflow order.
const (
	// PhaseStart is the initial phase before any checks run.
	PhaseStart UnitPhase = "start"

	// PhasePrerequisitesChecked means target and change parameters passed
	// validation.
	PhasePrerequisitesChecked UnitPhase = "prerequisites_checked"

	// PhaseSlotValidated means the source slot was confirmed to exist.
	PhaseSlotValidated UnitPhase = "slot_validated"

	// PhaseSettingReconciled means the setting write (or no-op / dry-run
	// decision) completed.
	PhaseSettingReconciled UnitPhase = "setting_reconciled"

	// PhaseSwapPreviewStarted means the swap-with-preview was initiated.
	// From here on, any failure requires a best-effort swap cancel.
	PhaseSwapPreviewStarted UnitPhase = "swap_preview_started"

	// PhaseValidationPassed means the health check succeeded and the swap
	// will be completed.
	PhaseValidationPassed UnitPhase = "validation_passed"

	// PhaseValidationFailed means the health check did not pass within
	// budget and the swap will be canceled.
	PhaseValidationFailed UnitPhase = "validation_failed"

	// PhaseSwapCompleted is the successful terminal phase.
	PhaseSwapCompleted UnitPhase = "swap_completed"

	// PhaseSwapRolledBack is the terminal phase after a swap cancel.
	PhaseSwapRolledBack UnitPhase = "swap_rolled_back"
)

// String returns the phase name.
func (p UnitPhase) String() string {
	return string(p)
}
