package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/slotshift/slotshift/internal/domain"
)

// RenderReport renders a run report as styled terminal text: one line
// per target in completion order within each bucket, then a summary
// line.
func RenderReport(r domain.Report) string {
	styles := NewOutputStyles()
	var b strings.Builder

	title := fmt.Sprintf("Deployment run %s", r.RunID)
	if r.DryRun {
		title += " (dry run)"
	}
	b.WriteString(styles.Header.Render(title))
	b.WriteString("\n\n")

	for _, outcome := range r.Succeeded {
		b.WriteString(renderOutcome(styles, outcome))
		b.WriteString("\n")
	}
	for _, outcome := range r.Failed {
		b.WriteString(renderOutcome(styles, outcome))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderSummary(styles, r))
	b.WriteString("\n")
	return b.String()
}

func renderOutcome(styles *OutputStyles, o domain.Outcome) string {
	marker := styles.Success.Render("✓")
	if !o.Success {
		marker = styles.Error.Render("✗")
	}
	if o.DryRun {
		marker = styles.Warning.Render("≈")
	}
	duration := styles.Muted.Render(fmt.Sprintf("(%s)", formatDuration(o.Duration)))
	return fmt.Sprintf("  %s %s: %s %s", marker, o.Target, o.Message, duration)
}

func renderSummary(styles *OutputStyles, r domain.Report) string {
	summary := fmt.Sprintf("%d succeeded, %d failed of %d target(s) in %s",
		len(r.Succeeded), len(r.Failed), r.Total, formatDuration(r.Duration))

	switch {
	case r.DryRun:
		return styles.Warning.Render(summary + "; no changes were made")
	case len(r.Failed) > 0:
		return styles.Error.Render(summary)
	default:
		return styles.Success.Render(summary)
	}
}

// formatDuration renders a duration at second granularity; sub-second
// runs keep their precision so dry runs don't show as "0s".
func formatDuration(d time.Duration) string {
	if d >= time.Second {
		return d.Round(time.Second).String()
	}
	return d.Round(time.Millisecond).String()
}
