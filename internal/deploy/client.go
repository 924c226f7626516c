// Package deploy implements the deployment orchestrator: the per-target
// five-phase workflow, the retrying health validator, and the bounded
// concurrent scheduler that fans the workflow out across targets.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, internal/logging, std lib
//   - MUST NOT import: internal/azure, internal/cli, internal/tui
package deploy

import (
	"context"

	"github.com/slotshift/slotshift/internal/domain"
)

// SlotClient is the provider boundary the deployment core depends on.
// Implementations are thin request/response adapters with no retry logic
// of their own; internal/azure provides the production implementation
// and tests provide fakes.
type SlotClient interface {
	// GetSlot confirms the target's source slot exists. Returns an error
	// wrapping errors.ErrTargetNotFound when the slot is absent.
	GetSlot(ctx context.Context, t domain.Target) error

	// GetSlotSettings returns a fresh snapshot of the slot's application
	// settings.
	GetSlotSettings(ctx context.Context, t domain.Target) (domain.SlotConfig, error)

	// UpdateSlotSettings replaces the slot's complete settings set.
	// Callers must pass the full merged map; the provider does not do
	// partial updates.
	UpdateSlotSettings(ctx context.Context, t domain.Target, settings domain.SlotConfig) error

	// BeginSwapPreview stages a swap from the source slot into production.
	BeginSwapPreview(ctx context.Context, t domain.Target) error

	// CompleteSwap promotes a previewed swap into production.
	CompleteSwap(ctx context.Context, t domain.Target) error

	// CancelSwap rolls back a previewed swap.
	CancelSwap(ctx context.Context, t domain.Target) error
}
