package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/slotshift/slotshift/internal/azure"
	"github.com/slotshift/slotshift/internal/config"
	"github.com/slotshift/slotshift/internal/constants"
	"github.com/slotshift/slotshift/internal/deploy"
	"github.com/slotshift/slotshift/internal/domain"
	"github.com/slotshift/slotshift/internal/errors"
	"github.com/slotshift/slotshift/internal/signal"
	"github.com/slotshift/slotshift/internal/tui"
)

// newSlotClient creates the provider client. Package-level so tests can
// substitute a fake without touching Azure.
//
//nolint:gochecknoglobals // Test seam for provider construction
var newSlotClient = func(subscriptionID string, logger zerolog.Logger) (deploy.SlotClient, error) {
	return azure.NewWithDefaultCredential(subscriptionID, logger)
}

// stdinIsTerminal reports whether an interactive confirmation prompt can
// be shown. Package-level so tests can force either mode.
//
//nolint:gochecknoglobals // Test seam for terminal detection
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// deployFlags holds the deploy command's flags.
type deployFlags struct {
	app               string
	resourceGroup     string
	slot              string
	setting           string
	plan              string
	subscription      string
	validationURL     string
	validationTimeout time.Duration
	maxParallel       int
	jobTimeout        time.Duration
	dryRun            bool
	force             bool
}

// AddDeployCommand adds the deploy command to the root command.
func AddDeployCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &deployFlags{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Apply a setting change and swap slots into production",
		Long: `Deploy updates one application setting in each target's source slot,
previews the swap against production configuration, health-checks the
slot, and promotes it into production. A failed health check cancels the
swap, leaving production untouched.

Targets come either from flags (one target) or from a plan file (any
number). Use --dry-run to see what would change without touching
anything.`,
		Example: `  # Single target
  slotshift deploy --app orders-api --resource-group rg-prod \
      --setting API_VERSION=v2 \
      --validation-url https://orders-api-staging.azurewebsites.net/healthz

  # Fleet deployment from a plan file
  slotshift deploy --plan release.yaml --max-parallel 5

  # Rehearse without changing anything
  slotshift deploy --plan release.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd, flags, global)
		},
	}

	cmd.Flags().StringVar(&flags.app, "app", "", "App Service app name")
	cmd.Flags().StringVar(&flags.resourceGroup, "resource-group", "", "Azure resource group of the app")
	cmd.Flags().StringVar(&flags.slot, "slot", "staging", fmt.Sprintf("source slot to deploy from %v", constants.SourceSlots()))
	cmd.Flags().StringVar(&flags.setting, "setting", "", "application setting to apply, as NAME=VALUE")
	cmd.Flags().StringVar(&flags.plan, "plan", "", "deploy plan file (YAML) with the setting and target list")
	cmd.Flags().StringVar(&flags.subscription, "subscription", "", "Azure subscription ID (defaults to config)")
	cmd.Flags().StringVar(&flags.validationURL, "validation-url", "", "health check URL template; {target} expands to the app name")
	cmd.Flags().DurationVar(&flags.validationTimeout, "validation-timeout", 0, "per-target health check time budget")
	cmd.Flags().IntVar(&flags.maxParallel, "max-parallel", 0, fmt.Sprintf("concurrent targets, 1 to %d", constants.MaxParallelLimit))
	cmd.Flags().DurationVar(&flags.jobTimeout, "job-timeout", 0, "wall clock budget for the whole run")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report intended changes without performing any")
	cmd.Flags().BoolVar(&flags.force, "force", false, "skip the multi-target confirmation prompt")

	cmd.MarkFlagsMutuallyExclusive("plan", "app")
	cmd.MarkFlagsMutuallyExclusive("plan", "setting")

	root.AddCommand(cmd)
}

// runDeploy resolves configuration, builds the target list, and hands off
// to the orchestrator.
func runDeploy(cmd *cobra.Command, flags *deployFlags, global *GlobalFlags) error {
	logger := GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyDeployOverrides(cmd, cfg, flags, global)

	targets, change, err := resolveRunDefinition(cfg, flags)
	if err != nil {
		return err
	}

	subscription := flags.subscription
	if subscription == "" {
		subscription = cfg.Azure.SubscriptionID
	}
	if subscription == "" {
		return errors.NewExitCode2Error(
			fmt.Errorf("%w: subscription ID is required (--subscription or SLOTSHIFT_AZURE_SUBSCRIPTION_ID)", errors.ErrConfigInvalid))
	}

	client, err := newSlotClient(subscription, logger)
	if err != nil {
		return fmt.Errorf("create provider client: %w", err)
	}

	handler := signal.NewHandler(cmd.Context())
	defer handler.Stop()

	var confirmer deploy.Confirmer
	if stdinIsTerminal() {
		confirmer = &tui.SwapConfirmer{}
	}

	out := tui.NewOutput(cmd.OutOrStdout(), cfg.Output)
	orchestrator := deploy.NewOrchestrator(client, nil, nil, logger, nil)

	report, err := orchestrator.Run(handler.Context(), deploy.RunParams{
		Targets:          targets,
		Change:           change,
		URLTemplate:      cfg.Deploy.ValidationURL,
		ValidationBudget: cfg.Deploy.ValidationTimeout,
		MaxParallel:      cfg.Deploy.MaxParallel,
		JobTimeout:       cfg.Deploy.JobTimeout,
		DryRun:           flags.dryRun,
		Force:            flags.force,
		Confirmer:        confirmer,
	})
	if err != nil {
		out.Error(err)
		return err
	}

	if renderErr := renderReport(out, cfg.Output, report); renderErr != nil {
		return renderErr
	}

	if handler.WasInterrupted() {
		out.Warning("run was interrupted; previewed swaps were rolled back where possible")
	}
	if report.RunFailed() {
		return fmt.Errorf("%w: %d of %d target(s) failed", errors.ErrDeploymentFailed, len(report.Failed), report.Total)
	}
	return nil
}

// applyDeployOverrides layers changed CLI flags over the loaded config.
// Only flags the user actually set are applied, so config and environment
// values survive.
func applyDeployOverrides(cmd *cobra.Command, cfg *config.Config, flags *deployFlags, global *GlobalFlags) {
	if cmd.Flags().Changed("max-parallel") {
		cfg.Deploy.MaxParallel = flags.maxParallel
	}
	if cmd.Flags().Changed("job-timeout") {
		cfg.Deploy.JobTimeout = flags.jobTimeout
	}
	if cmd.Flags().Changed("validation-timeout") {
		cfg.Deploy.ValidationTimeout = flags.validationTimeout
	}
	if cmd.Flags().Changed("validation-url") {
		cfg.Deploy.ValidationURL = flags.validationURL
	}
	if cmd.Root().PersistentFlags().Changed("output") {
		cfg.Output = global.Output
	}
}

// resolveRunDefinition builds the target list and setting change from
// either the plan file or the single-target flags.
func resolveRunDefinition(cfg *config.Config, flags *deployFlags) ([]domain.Target, domain.SettingChange, error) {
	if flags.plan != "" {
		plan, err := config.LoadPlan(flags.plan)
		if err != nil {
			return nil, domain.SettingChange{}, errors.NewExitCode2Error(err)
		}
		// The flag override has already been applied to cfg, so the plan
		// only fills the gap when neither flag nor config set a URL.
		if plan.ValidationURL != "" && cfg.Deploy.ValidationURL == "" {
			cfg.Deploy.ValidationURL = plan.ValidationURL
		}
		return plan.Targets, plan.Setting, nil
	}

	if flags.app == "" || flags.resourceGroup == "" || flags.setting == "" {
		return nil, domain.SettingChange{}, errors.NewExitCode2Error(
			fmt.Errorf("%w: --app, --resource-group, and --setting are required without --plan", errors.ErrConfigInvalid))
	}

	change, err := parseSetting(flags.setting)
	if err != nil {
		return nil, domain.SettingChange{}, errors.NewExitCode2Error(err)
	}

	target := domain.Target{
		Name:          flags.app,
		ResourceGroup: flags.resourceGroup,
		SourceSlot:    flags.slot,
	}
	if err = target.Validate(); err != nil {
		return nil, domain.SettingChange{}, errors.NewExitCode2Error(err)
	}

	return []domain.Target{target}, change, nil
}

// parseSetting parses a NAME=VALUE flag. The value may be empty; the name
// may not.
func parseSetting(s string) (domain.SettingChange, error) {
	name, value, found := strings.Cut(s, "=")
	if !found || strings.TrimSpace(name) == "" {
		return domain.SettingChange{}, fmt.Errorf("%w: --setting must be NAME=VALUE, got %q", errors.ErrConfigInvalid, s)
	}
	return domain.SettingChange{Name: name, Value: value}, nil
}

// renderReport writes the run report in the selected format.
func renderReport(out tui.Output, format string, report domain.Report) error {
	if format == config.OutputJSON {
		return out.JSON(report)
	}
	out.Info(tui.RenderReport(report))
	return nil
}
