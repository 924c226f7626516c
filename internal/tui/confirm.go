package tui

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/slotshift/slotshift/internal/domain"
	sserrors "github.com/slotshift/slotshift/internal/errors"
)

// maxListedTargets bounds the confirmation prompt height; larger runs
// show a count for the remainder.
const maxListedTargets = 8

// SwapConfirmer asks the operator to approve a multi-target production
// swap with an interactive prompt. It satisfies the orchestrator's
// Confirmer interface.
type SwapConfirmer struct {
	// Accessible enables screen-reader friendly prompts.
	Accessible bool
}

// Confirm shows the confirmation prompt and returns the operator's
// decision. Aborting the prompt (ctrl-c) is reported as
// ErrPromptCanceled, not as a decline.
func (c *SwapConfirmer) Confirm(targets []domain.Target, change domain.SettingChange) (bool, error) {
	confirmed := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Swap %d slots into production?", len(targets))).
				Description(describeRun(targets, change)).
				Affirmative("Deploy").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithAccessible(c.Accessible)

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return false, sserrors.ErrPromptCanceled
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return confirmed, nil
}

// describeRun summarizes the setting change and target list for the
// prompt body.
func describeRun(targets []domain.Target, change domain.SettingChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Setting %s=%s will be applied, validated, and promoted on:\n", change.Name, change.Value)

	listed := targets
	if len(listed) > maxListedTargets {
		listed = listed[:maxListedTargets]
	}
	for _, t := range listed {
		fmt.Fprintf(&b, "  • %s\n", t)
	}
	if remaining := len(targets) - len(listed); remaining > 0 {
		fmt.Fprintf(&b, "  … and %d more\n", remaining)
	}
	return b.String()
}
