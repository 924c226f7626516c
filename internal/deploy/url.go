package deploy

import (
	"strings"

	"github.com/slotshift/slotshift/internal/constants"
	"github.com/slotshift/slotshift/internal/domain"
)

// RenderValidationURL expands the {target} placeholder in a validation
// URL template with the target's app name. A template without the
// placeholder is returned unchanged, which lets a single-target run use
// a literal URL. An empty template stays empty, meaning validation is
// skipped.
func RenderValidationURL(template string, t domain.Target) string {
	if template == "" {
		return ""
	}
	return strings.ReplaceAll(template, constants.TargetPlaceholder, t.Name)
}
