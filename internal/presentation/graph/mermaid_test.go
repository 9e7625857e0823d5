package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/lantern/internal/presentation/graph"
	"github.com/aretw0/lantern/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		transitions []domain.Transition
		overlay     *graph.GraphOverlay
		contains    []string
		excludes    []string
	}{
		{
			name:        "Phase Shapes",
			transitions: domain.Transitions,
			contains: []string{
				"idle((\"idle\"))",
				"entering_transition[[\"entering_transition\"]]",
				"writing[/\"writing\"/]",
				"done[\"done\"]",
			},
		},
		{
			name:        "Edges",
			transitions: domain.Transitions,
			contains: []string{
				"idle -- \"select_birthdate\" --> entering_transition",
				"done -- \"write_another\" --> writing",
				"writing -. \"submit_failed\" .-> writing",
			},
			excludes: []string{"classDef"},
		},
		{
			name: "ID Sanitization",
			transitions: []domain.Transition{
				{From: "a-b", To: "c.d/e", Trigger: "go"},
			},
			contains: []string{"a_b -- \"go\" --> c_d_e"},
		},
		{
			name:        "Overlay",
			transitions: domain.Transitions,
			overlay: &graph.GraphOverlay{
				VisitedPhases: []domain.Phase{domain.PhaseIdle, domain.PhaseIdle, domain.PhaseEnteringTransition},
				CurrentPhase:  domain.PhaseWriting,
			},
			contains: []string{
				"classDef visited",
				"class idle visited;",
				"class entering_transition visited;",
				"class writing current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.transitions, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("missing header:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q\n%s", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("expected output not to contain %q\n%s", bad, got)
				}
			}
			if n := strings.Count(got, "class idle visited;"); n > 1 {
				t.Errorf("visited phase styled %d times", n)
			}
		})
	}
}
