package deploy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotshift/slotshift/internal/constants"
	"github.com/slotshift/slotshift/internal/domain"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

func newTestUnit(client *fakeSlotClient, doer *fakeDoer, dryRun bool) *Unit {
	clk := newFakeClock()
	return NewUnit(UnitParams{
		Target:      testTarget("app-a"),
		Change:      testChange(),
		Client:      client,
		Validator:   NewValidator(doer, clk, zerolog.Nop()),
		URLTemplate: "https://{target}-staging.azurewebsites.net/healthz",
		DryRun:      dryRun,
		Clock:       clk,
		Logger:      zerolog.Nop(),
	})
}

func TestUnitRunHappyPath(t *testing.T) {
	client := newFakeSlotClient()
	target := testTarget("app-a")
	client.setSettings(target, domain.SlotConfig{"API_VERSION": "v1", "OTHER": "keep"})
	doer := &fakeDoer{statuses: []int{http.StatusOK}}

	unit := newTestUnit(client, doer, false)
	outcome := unit.Run(context.Background())

	assert.True(t, outcome.Success)
	assert.Equal(t, "completed", outcome.Message)
	assert.Equal(t, target.String(), outcome.Target)
	assert.False(t, outcome.DryRun)

	assert.Equal(t, constants.PhaseSwapCompleted, unit.Phase())
	assert.Equal(t, 1, client.callCount("getSlot"))
	assert.Equal(t, 1, client.callCount("update"))
	assert.Equal(t, 1, client.callCount("preview"))
	assert.Equal(t, 1, client.callCount("complete"))
	assert.Equal(t, 0, client.callCount("cancel"))

	written := client.lastUpdate[target.String()]
	require.NotNil(t, written)
	assert.Equal(t, "v2", written["API_VERSION"])
	assert.Equal(t, "keep", written["OTHER"])
}

func TestUnitRunNoChangeSkipsSwap(t *testing.T) {
	client := newFakeSlotClient()
	client.setSettings(testTarget("app-a"), domain.SlotConfig{"API_VERSION": "v2"})
	doer := &fakeDoer{}

	unit := newTestUnit(client, doer, false)
	outcome := unit.Run(context.Background())

	assert.True(t, outcome.Success)
	assert.Equal(t, "no change needed", outcome.Message)
	assert.Equal(t, constants.PhaseSettingReconciled, unit.Phase())
	assert.Equal(t, 0, client.callCount("update"))
	assert.Equal(t, 0, client.callCount("preview"))
	assert.Equal(t, 0, doer.requestCount())
}

func TestUnitRunDryRunHasNoSideEffects(t *testing.T) {
	client := newFakeSlotClient()
	client.setSettings(testTarget("app-a"), domain.SlotConfig{"API_VERSION": "v1"})
	doer := &fakeDoer{}

	unit := newTestUnit(client, doer, true)
	outcome := unit.Run(context.Background())

	assert.True(t, outcome.Success)
	assert.True(t, outcome.DryRun)
	assert.Contains(t, outcome.Message, "dry run")

	assert.Equal(t, 0, client.callCount("update"))
	assert.Equal(t, 0, client.callCount("preview"))
	assert.Equal(t, 0, client.callCount("complete"))
	assert.Equal(t, 0, client.callCount("cancel"))
	assert.Equal(t, 0, doer.requestCount())
}

func TestUnitRunValidationFailureRollsBackOnce(t *testing.T) {
	client := newFakeSlotClient()
	client.setSettings(testTarget("app-a"), domain.SlotConfig{"API_VERSION": "v1"})
	doer := &fakeDoer{statuses: []int{http.StatusServiceUnavailable}}

	unit := newTestUnit(client, doer, false)
	outcome := unit.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "rolled back")
	assert.Contains(t, outcome.Message, fmt.Sprintf("%d attempt(s)", constants.ValidationMaxAttempts))

	assert.Equal(t, constants.PhaseSwapRolledBack, unit.Phase())
	assert.Equal(t, 1, client.callCount("cancel"))
	assert.Equal(t, 0, client.callCount("complete"))
}

func TestUnitRunRollbackFailureIsReported(t *testing.T) {
	client := newFakeSlotClient()
	client.setSettings(testTarget("app-a"), domain.SlotConfig{"API_VERSION": "v1"})
	client.cancelErr = errors.New("reset rejected")
	doer := &fakeDoer{statuses: []int{http.StatusServiceUnavailable}}

	unit := newTestUnit(client, doer, false)
	outcome := unit.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "rollback failed")
	assert.Contains(t, outcome.Message, "reset rejected")
	assert.Equal(t, 1, client.callCount("cancel"))
}

func TestUnitRunCompleteSwapFailureIsTerminal(t *testing.T) {
	client := newFakeSlotClient()
	client.setSettings(testTarget("app-a"), domain.SlotConfig{"API_VERSION": "v1"})
	client.completeErr = errors.New("swap conflict")
	doer := &fakeDoer{statuses: []int{http.StatusOK}}

	unit := newTestUnit(client, doer, false)
	outcome := unit.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "swap conflict")
	assert.Equal(t, 0, client.callCount("cancel"), "a failed completion must not be rolled back")
}

func TestUnitRunPreviewFailureNeedsNoRollback(t *testing.T) {
	client := newFakeSlotClient()
	client.setSettings(testTarget("app-a"), domain.SlotConfig{"API_VERSION": "v1"})
	client.previewErr = errors.New("preview rejected")

	unit := newTestUnit(client, &fakeDoer{}, false)
	outcome := unit.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "preview rejected")
	assert.Equal(t, 0, client.callCount("cancel"))
}

func TestUnitRunInvalidParametersFailBeforeProviderCalls(t *testing.T) {
	tests := []struct {
		name   string
		target domain.Target
		change domain.SettingChange
	}{
		{
			name:   "production source slot rejected",
			target: domain.Target{Name: "app-a", ResourceGroup: "rg", SourceSlot: "production"},
			change: testChange(),
		},
		{
			name:   "missing resource group",
			target: domain.Target{Name: "app-a", SourceSlot: "staging"},
			change: testChange(),
		},
		{
			name:   "empty setting name",
			target: testTarget("app-a"),
			change: domain.SettingChange{Value: "v2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeSlotClient()
			unit := NewUnit(UnitParams{
				Target: tt.target,
				Change: tt.change,
				Client: client,
				Clock:  newFakeClock(),
				Logger: zerolog.Nop(),
			})

			outcome := unit.Run(context.Background())

			assert.False(t, outcome.Success)
			assert.Equal(t, 0, client.callCount("getSlot"))
			assert.Equal(t, constants.PhaseStart, unit.Phase())
		})
	}
}

func TestUnitRunMissingSlotIsTerminal(t *testing.T) {
	client := newFakeSlotClient()
	client.getSlotFn = func(_ context.Context, t domain.Target) error {
		return fmt.Errorf("slot %s: %w", t, sserrors.ErrTargetNotFound)
	}

	unit := newTestUnit(client, &fakeDoer{}, false)
	outcome := unit.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, sserrors.ErrTargetNotFound.Error())
	assert.Equal(t, 1, client.callCount("getSlot"))
	assert.Equal(t, 0, client.callCount("getSettings"))
}

func TestUnitRunCanceledContextStopsBeforePreview(t *testing.T) {
	client := newFakeSlotClient()
	client.setSettings(testTarget("app-a"), domain.SlotConfig{"API_VERSION": "v1"})

	ctx, cancel := context.WithCancel(context.Background())
	client.getSlotFn = func(context.Context, domain.Target) error {
		// Cancel mid-run so validation starts on a dead context.
		cancel()
		return nil
	}
	doer := &fakeDoer{statuses: []int{http.StatusOK}}

	unit := newTestUnit(client, doer, false)
	outcome := unit.Run(ctx)

	assert.False(t, outcome.Success)
	assert.Equal(t, 0, client.callCount("preview"), "cancellation before the preview must stop the unit")
	assert.Equal(t, 0, client.callCount("cancel"))
}

func TestUnitRunValidationSkippedWithoutURL(t *testing.T) {
	client := newFakeSlotClient()
	client.setSettings(testTarget("app-a"), domain.SlotConfig{"API_VERSION": "v1"})
	doer := &fakeDoer{}
	clk := newFakeClock()

	unit := NewUnit(UnitParams{
		Target:    testTarget("app-a"),
		Change:    testChange(),
		Client:    client,
		Validator: NewValidator(doer, clk, zerolog.Nop()),
		Clock:     clk,
		Logger:    zerolog.Nop(),
	})
	outcome := unit.Run(context.Background())

	assert.True(t, outcome.Success)
	assert.Equal(t, "completed", outcome.Message)
	assert.Equal(t, 0, doer.requestCount())
	assert.Equal(t, 1, client.callCount("complete"))
}
