// Package graph renders a storyworld's narrative topology as a Mermaid
// flowchart: spools as subgraphs, encounters as nodes, choices as labeled
// edges. Useful for reviewing authored storyworlds before a run.
package graph

import (
	"fmt"
	"strings"

	"github.com/spoolworks/spindle/pkg/domain"
)

// Overlay carries per-agent runtime state to visualize on the graph.
type Overlay struct {
	VisitedEncounters []string
	CurrentEncounter  string
}

// GenerateMermaid produces Mermaid flowchart syntax for a storyworld.
// Entry encounters are circles; terminal choices point at a shared END
// node; next-spool routing uses dotted "jump" arrows. Overlay styling
// marks visited and current encounters when provided.
func GenerateMermaid(sw *domain.Storyworld, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entries := make(map[string]bool, len(sw.Spools))
	for _, spool := range sw.Spools {
		entries[spool.EntryEncounter] = true
	}

	hasTerminal := false
	for _, spool := range sw.Spools {
		safeSpool := sanitizeMermaidID(spool.ID)
		title := spool.ID
		if spool.EntryGate != "" {
			title = fmt.Sprintf("%s ⛩ %s", spool.ID, spool.EntryGate)
		}
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", safeSpool, title)

		for _, enc := range sw.Encounters {
			if enc.SpoolID != spool.ID {
				continue
			}
			safeID := sanitizeMermaidID(enc.ID)
			opener, closer := "[", "]"
			if entries[enc.ID] {
				opener, closer = "((", "))" // entry point
			}
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", safeID, opener, enc.ID, closer)
		}
		sb.WriteString("    end\n")
	}

	for _, enc := range sw.Encounters {
		safeID := sanitizeMermaidID(enc.ID)
		for _, choice := range enc.Choices {
			label := strings.ReplaceAll(choice.Text, "\"", "'")
			if label == "" {
				label = choice.ID
			}
			if choice.Gate != "" {
				label = fmt.Sprintf("%s ⛩ %s", label, choice.Gate)
			}

			switch {
			case choice.Terminal:
				hasTerminal = true
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> END\n", safeID, label)
			case choice.NextEncounter != "":
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(choice.NextEncounter))
			case choice.NextSpool != "":
				// Cross-spool jump lands on the target's entry encounter.
				if spool, ok := sw.Spool(choice.NextSpool); ok {
					fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, label, sanitizeMermaidID(spool.EntryEncounter))
				}
			}
		}
	}
	if hasTerminal {
		sb.WriteString("    END((\"end\"))\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of Mermaid theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, id := range overlay.VisitedEncounters {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !visited[safeID] {
				visited[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentEncounter != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentEncounter))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return replacer.Replace(id)
}
