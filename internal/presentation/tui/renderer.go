package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/spoolworks/spindle/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour,
// auto-detecting light/dark terminal backgrounds.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// EncounterMarkdown formats an agent's current encounter as a markdown
// document: description, numbered choices, and the recent-history tail.
// Returns "" when the view has no focus encounter.
func EncounterMarkdown(view domain.AgentView) string {
	if view.CurrentEncounter == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", view.CurrentEncounter.ID)
	if view.CurrentEncounter.Description != "" {
		sb.WriteString(view.CurrentEncounter.Description)
		sb.WriteString("\n\n")
	}
	for i, choice := range view.AvailableChoices {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, choice.Text)
	}
	if len(view.RecentHistory) > 0 {
		sb.WriteString("\n---\n")
		for _, line := range view.RecentHistory {
			fmt.Fprintf(&sb, "> %s\n", line)
		}
	}
	return sb.String()
}
