package main

import (
	"context"
	"fmt"

	"github.com/aretw0/lantern/internal/cli"
	"github.com/aretw0/lantern/pkg/adapters/lanterns/lanternstest"
	"github.com/spf13/cobra"
)

var fakeRemoteCmd = &cobra.Command{
	Use:   "fake-remote",
	Short: "Run an in-memory lantern service for local development",
	Long: `Serves POST /lanterns/ and GET /lanterns/{id} with the same validation and
error payloads as the real service. Lanterns are lost on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		apiKey, _ := cmd.Flags().GetString("api-key")

		_, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		handler := lanternstest.NewHandler(apiKey, lanternstest.WithLogger(logger))

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return listen(ctx, fmt.Sprintf(":%d", port), handler, logger)
	},
}

func init() {
	rootCmd.AddCommand(fakeRemoteCmd)
	fakeRemoteCmd.Flags().Int("port", 8000, "Port to listen on")
	fakeRemoteCmd.Flags().String("api-key", "dev-key", "API key expected in X-API-Key")
}
