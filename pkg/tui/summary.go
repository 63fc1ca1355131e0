package tui

import (
	"fmt"
	"strings"

	"github.com/blackcoderx/pmsync/pkg/syncer"
)

// SummaryMarkdown describes a finished run as a markdown table.
func SummaryMarkdown(res *syncer.RunResult) string {
	var b strings.Builder
	b.WriteString("## Sync complete\n\n")
	b.WriteString("| Asset | Name | Action | UID |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range []syncer.UpsertResult{res.Environment, res.Collection} {
		fmt.Fprintf(&b, "| %s | %s | %s | `%s` |\n", r.Kind, escapeCell(r.Name), r.Action, r.RemoteID)
	}
	return b.String()
}

// RenderSummary renders SummaryMarkdown for the terminal, or returns the
// raw markdown if rendering fails.
func RenderSummary(res *syncer.RunResult, width int) string {
	return RenderMarkdown(SummaryMarkdown(res), width)
}

// PlanMarkdown describes a preview entry.
func PlanMarkdown(p syncer.PlanEntry) string {
	switch {
	case p.Action == syncer.ActionCreated:
		return fmt.Sprintf("**%s %q** would be created.", p.Kind, p.Name)
	case !p.Changed():
		return fmt.Sprintf("**%s %q** (`%s`) is up to date.", p.Kind, p.Name, p.RemoteID)
	default:
		return fmt.Sprintf("**%s %q** (`%s`) would be replaced. Remote content not shown below is discarded.", p.Kind, p.Name, p.RemoteID)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
