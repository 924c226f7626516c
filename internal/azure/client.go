// Package azure adapts the App Service management API to the small set
// of slot verbs the deployment core needs. The adapter is deliberately
// thin: pure request/response, no retries, no caching. Retry and
// rollback policy live in internal/deploy.
package azure

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/rs/zerolog"

	"github.com/slotshift/slotshift/internal/constants"
	"github.com/slotshift/slotshift/internal/domain"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

// Client implements the deployment core's SlotClient interface over the
// App Service WebApps API.
type Client struct {
	webApps *armappservice.WebAppsClient
	logger  zerolog.Logger
}

// New creates a Client for the given subscription using an explicit
// credential. Pass opts to override the transport (used by tests).
func New(subscriptionID string, credential azcore.TokenCredential, opts *arm.ClientOptions, logger zerolog.Logger) (*Client, error) {
	webApps, err := armappservice.NewWebAppsClient(subscriptionID, credential, opts)
	if err != nil {
		return nil, fmt.Errorf("create web apps client: %w", err)
	}
	return &Client{webApps: webApps, logger: logger}, nil
}

// NewWithDefaultCredential creates a Client using the default Azure
// credential chain (environment, workload identity, managed identity,
// CLI).
func NewWithDefaultCredential(subscriptionID string, logger zerolog.Logger) (*Client, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve azure credential: %w", err)
	}
	return New(subscriptionID, credential, nil, logger)
}

// GetSlot confirms the target's source slot exists.
// Returns ErrTargetNotFound when the app or slot is absent.
func (c *Client) GetSlot(ctx context.Context, t domain.Target) error {
	_, err := c.webApps.GetSlot(ctx, t.ResourceGroup, t.Name, t.SourceSlot, nil)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("slot %s: %w", t, sserrors.ErrTargetNotFound)
		}
		return c.providerErr(err, t, "get slot")
	}
	return nil
}

// GetSlotSettings fetches a fresh snapshot of the slot's application
// settings. Returns ErrTargetNotFound when the app or slot is absent.
func (c *Client) GetSlotSettings(ctx context.Context, t domain.Target) (domain.SlotConfig, error) {
	resp, err := c.webApps.ListApplicationSettingsSlot(ctx, t.ResourceGroup, t.Name, t.SourceSlot, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("slot %s: %w", t, sserrors.ErrTargetNotFound)
		}
		return nil, c.providerErr(err, t, "list application settings")
	}

	settings := make(domain.SlotConfig, len(resp.Properties))
	for name, value := range resp.Properties {
		if value != nil {
			settings[name] = *value
		}
	}
	return settings, nil
}

// UpdateSlotSettings writes the complete settings map to the slot. The
// management API replaces the whole set, so callers must always pass the
// full merged map, never a partial one.
func (c *Client) UpdateSlotSettings(ctx context.Context, t domain.Target, settings domain.SlotConfig) error {
	properties := make(map[string]*string, len(settings))
	for name, value := range settings {
		properties[name] = to.Ptr(value)
	}

	_, err := c.webApps.UpdateApplicationSettingsSlot(ctx, t.ResourceGroup, t.Name, t.SourceSlot,
		armappservice.StringDictionary{Properties: properties}, nil)
	if err != nil {
		return c.providerErr(err, t, "update application settings")
	}
	return nil
}

// BeginSwapPreview starts a swap-with-preview from the source slot into
// production. Production settings are applied to the source slot so the
// app can be validated against them before any traffic moves.
func (c *Client) BeginSwapPreview(ctx context.Context, t domain.Target) error {
	_, err := c.webApps.ApplySlotConfigurationSlot(ctx, t.ResourceGroup, t.Name, t.SourceSlot, c.swapEntity(), nil)
	if err != nil {
		return c.providerErr(err, t, "begin swap preview")
	}
	return nil
}

// CompleteSwap promotes the previewed swap into production and waits for
// the operation to finish.
func (c *Client) CompleteSwap(ctx context.Context, t domain.Target) error {
	poller, err := c.webApps.BeginSwapSlot(ctx, t.ResourceGroup, t.Name, t.SourceSlot, c.swapEntity(), nil)
	if err != nil {
		return c.providerErr(err, t, "complete swap")
	}
	if _, err = poller.PollUntilDone(ctx, nil); err != nil {
		return c.providerErr(err, t, "complete swap")
	}
	return nil
}

// CancelSwap cancels a previewed swap, restoring the source slot's own
// configuration.
func (c *Client) CancelSwap(ctx context.Context, t domain.Target) error {
	_, err := c.webApps.ResetSlotConfigurationSlot(ctx, t.ResourceGroup, t.Name, t.SourceSlot, nil)
	if err != nil {
		return c.providerErr(err, t, "cancel swap")
	}
	return nil
}

// swapEntity targets the production slot for preview, swap, and cancel.
func (c *Client) swapEntity() armappservice.CsmSlotEntity {
	return armappservice.CsmSlotEntity{
		TargetSlot:   to.Ptr(constants.ProductionSlot),
		PreserveVnet: to.Ptr(false),
	}
}

// providerErr wraps an API failure with target context and the
// ErrProvider sentinel, logging the underlying cause once at the adapter
// boundary.
func (c *Client) providerErr(err error, t domain.Target, operation string) error {
	c.logger.Error().
		Err(err).
		Str("target", t.String()).
		Str("operation", operation).
		Msg("provider call failed")
	return fmt.Errorf("%s for %s: %w: %w", operation, t, sserrors.ErrProvider, err)
}

// isNotFound reports whether err is an ARM 404 response.
func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return stderrors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
