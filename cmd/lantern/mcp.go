package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/lantern/internal/cli"
	"github.com/aretw0/lantern/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes zodiac calculation and stored journeys as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		svc, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		opts := []mcp.Option{mcp.WithLogger(svc.Logger)}
		if svc.Client != nil {
			opts = append(opts, mcp.WithLanternReader(svc.Client))
		}
		srv := mcp.NewServer(svc, opts...)

		switch transport {
		case "stdio":
			// The logger writes to stderr, stdout carries JSON-RPC.
			svc.Logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			svc.Logger.Info("MCP server stopped")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
