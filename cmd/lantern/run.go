package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/lantern/internal/cli"
	"github.com/aretw0/lantern/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Walk the lantern journey in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")
		askIdentity, _ := cmd.Flags().GetBool("identity")

		svc, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		c, err := svc.NewController(ctx, session)
		if err != nil {
			return err
		}
		defer c.Close()

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		if interactive && !plain {
			tui.PrintBanner(os.Stdout)
		}

		terminal := &cli.Terminal{
			In:          cli.NewInterruptibleReader(os.Stdin, ctx.Done()),
			Out:         os.Stdout,
			Render:      tui.NewRenderer(plain || !interactive),
			AskIdentity: askIdentity,
		}

		err = terminal.Run(ctx, c)
		if err != nil && cli.IsInterrupted(err) {
			fmt.Fprintln(os.Stdout, "\nSee you under the lanterns.")
			svc.Logger.Debug("journey interrupted", "signal", ctx.Signal())
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "", "Journey key (defaults to store.key)")
	runCmd.Flags().Bool("plain", false, "Print markdown without styling")
	runCmd.Flags().Bool("identity", false, "Ask for name and email after the reveal")
}
