package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lantern/pkg/domain"
)

// GraphOverlay marks phases of a live controller on the diagram.
type GraphOverlay struct {
	VisitedPhases []domain.Phase
	CurrentPhase  domain.Phase
}

// GenerateMermaid produces a Mermaid flowchart of the journey state machine.
// It applies semantic styling:
// - Idle: ((Circle))
// - Transitions in progress: [[Subroutine]]
// - Writing: [/Parallelogram/]
// - Default: [Rectangle]
// Self loops are dotted. Overlay styles (visited/current) are applied if provided.
func GenerateMermaid(transitions []domain.Transition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[domain.Phase]bool)
	declare := func(p domain.Phase) {
		if declared[p] {
			return
		}
		declared[p] = true

		opener, closer := "[", "]"
		switch p {
		case domain.PhaseIdle:
			opener, closer = "((", "))"
		case domain.PhaseEnteringTransition, domain.PhaseExitingTransition:
			opener, closer = "[[", "]]"
		case domain.PhaseWriting:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(string(p)), opener, p, closer)
	}

	for _, t := range transitions {
		declare(t.From)
		declare(t.To)
	}

	for _, t := range transitions {
		arrow := fmt.Sprintf("-- \"%s\" -->", t.Trigger)
		if t.From == t.To {
			arrow = fmt.Sprintf("-. \"%s\" .->", t.Trigger)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(string(t.From)), arrow, sanitizeMermaidID(string(t.To)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, p := range overlay.VisitedPhases {
			id := sanitizeMermaidID(string(p))
			if !visited[id] && id != "" {
				visited[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.CurrentPhase != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentPhase)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
