package main

import (
	"context"
	"fmt"

	"github.com/aretw0/lantern/internal/presentation/graph"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the journey state machine as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the journey phases and triggers.
With --session, the phase a controller would resume in is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")

		var overlay *graph.GraphOverlay
		if session != "" {
			svc, err := loadServices(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			c, err := svc.NewController(context.Background(), session)
			if err != nil {
				return err
			}
			c.Close()

			overlay = &graph.GraphOverlay{CurrentPhase: c.State().Phase}
			if overlay.CurrentPhase != domain.PhaseIdle {
				overlay.VisitedPhases = []domain.Phase{domain.PhaseIdle, domain.PhaseEnteringTransition}
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(domain.Transitions, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the resume phase of this journey key")
}
