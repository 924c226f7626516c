package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotshift/slotshift/internal/constants"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from constants.UnitPhase
		to   constants.UnitPhase
		want bool
	}{
		{name: "start to prerequisites", from: constants.PhaseStart, to: constants.PhasePrerequisitesChecked, want: true},
		{name: "prerequisites to slot validated", from: constants.PhasePrerequisitesChecked, to: constants.PhaseSlotValidated, want: true},
		{name: "slot validated to reconciled", from: constants.PhaseSlotValidated, to: constants.PhaseSettingReconciled, want: true},
		{name: "reconciled to preview", from: constants.PhaseSettingReconciled, to: constants.PhaseSwapPreviewStarted, want: true},
		{name: "preview to validation passed", from: constants.PhaseSwapPreviewStarted, to: constants.PhaseValidationPassed, want: true},
		{name: "preview to validation failed", from: constants.PhaseSwapPreviewStarted, to: constants.PhaseValidationFailed, want: true},
		{name: "validation passed to completed", from: constants.PhaseValidationPassed, to: constants.PhaseSwapCompleted, want: true},
		{name: "validation failed to rolled back", from: constants.PhaseValidationFailed, to: constants.PhaseSwapRolledBack, want: true},
		{name: "identity transition rejected", from: constants.PhaseSlotValidated, to: constants.PhaseSlotValidated, want: false},
		{name: "backward transition rejected", from: constants.PhaseSettingReconciled, to: constants.PhaseSlotValidated, want: false},
		{name: "phase skip rejected", from: constants.PhaseStart, to: constants.PhaseSwapPreviewStarted, want: false},
		{name: "validation passed cannot roll back", from: constants.PhaseValidationPassed, to: constants.PhaseSwapRolledBack, want: false},
		{name: "out of completed rejected", from: constants.PhaseSwapCompleted, to: constants.PhaseStart, want: false},
		{name: "out of rolled back rejected", from: constants.PhaseSwapRolledBack, to: constants.PhaseSwapPreviewStarted, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminalPhase(t *testing.T) {
	assert.True(t, IsTerminalPhase(constants.PhaseSwapCompleted))
	assert.True(t, IsTerminalPhase(constants.PhaseSwapRolledBack))
	assert.False(t, IsTerminalPhase(constants.PhaseStart))
	assert.False(t, IsTerminalPhase(constants.PhaseSwapPreviewStarted))
	assert.False(t, IsTerminalPhase(constants.PhaseValidationFailed))
}

func TestTerminalPhasesHaveNoOutgoingTransitions(t *testing.T) {
	for phase := range ValidTransitions {
		assert.False(t, IsTerminalPhase(phase), "phase %s has outgoing transitions but is marked terminal", phase)
	}
}

func TestSwapBegun(t *testing.T) {
	assert.False(t, SwapBegun(constants.PhaseStart))
	assert.False(t, SwapBegun(constants.PhaseSettingReconciled))
	assert.True(t, SwapBegun(constants.PhaseSwapPreviewStarted))
	assert.True(t, SwapBegun(constants.PhaseValidationPassed))
	assert.True(t, SwapBegun(constants.PhaseValidationFailed))
	assert.False(t, SwapBegun(constants.PhaseSwapCompleted))
	assert.False(t, SwapBegun(constants.PhaseSwapRolledBack))
}

func TestAdvanceRecordsHistory(t *testing.T) {
	clk := newFakeClock()
	unit := NewUnit(UnitParams{
		Target: testTarget("app-a"),
		Change: testChange(),
		Client: newFakeSlotClient(),
		Clock:  clk,
	})

	require.NoError(t, unit.advance(constants.PhasePrerequisitesChecked, "parameters validated"))
	require.NoError(t, unit.advance(constants.PhaseSlotValidated, "source slot exists"))

	history := unit.History()
	require.Len(t, history, 2)
	assert.Equal(t, constants.PhaseStart, history[0].From)
	assert.Equal(t, constants.PhasePrerequisitesChecked, history[0].To)
	assert.Equal(t, "parameters validated", history[0].Reason)
	assert.Equal(t, constants.PhaseSlotValidated, history[1].To)
	assert.Equal(t, clk.Now().UTC(), history[1].At)
	assert.Equal(t, constants.PhaseSlotValidated, unit.Phase())
}

func TestAdvanceRejectsInvalidTransition(t *testing.T) {
	unit := NewUnit(UnitParams{
		Target: testTarget("app-a"),
		Change: testChange(),
		Client: newFakeSlotClient(),
		Clock:  newFakeClock(),
	})

	err := unit.advance(constants.PhaseSwapCompleted, "skipping ahead")
	require.Error(t, err)
	assert.ErrorIs(t, err, sserrors.ErrInvalidTransition)
	assert.Equal(t, constants.PhaseStart, unit.Phase())
	assert.Empty(t, unit.History())
}
