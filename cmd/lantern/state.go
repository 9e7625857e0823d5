package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/journey"
	"github.com/aretw0/lantern/pkg/persistence/middleware"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset stored journeys",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored journey snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		redact, _ := cmd.Flags().GetBool("redact")

		svc, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		key := sessionKey(cmd, svc.Config.Store.Key)
		substrate := svc.Substrate
		if redact {
			mw, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
			if err != nil {
				return err
			}
			substrate = middleware.Chain(substrate, mw)
		}

		data, err := substrate.Load(context.Background(), key)
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			data, err = journey.Encode(domain.NewJourneyState())
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", key, err)
		}

		var out bytes.Buffer
		if err := json.Indent(&out, data, "", "  "); err != nil {
			return fmt.Errorf("snapshot %s is not valid JSON: %w", key, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String())
		return nil
	},
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored journey keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		keys, err := svc.Substrate.List(context.Background())
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset a stored journey to its defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		store := svc.JourneyStore(sessionKey(cmd, ""))
		if _, err := store.Dispatch(context.Background(), domain.Clear{}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", store.Key())
		return nil
	},
}

func sessionKey(cmd *cobra.Command, fallback string) string {
	if key, _ := cmd.Flags().GetString("session"); key != "" {
		return key
	}
	return fallback
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd, stateListCmd, stateClearCmd)

	stateCmd.PersistentFlags().String("session", "", "Journey key (defaults to store.key)")
	stateShowCmd.Flags().Bool("redact", false, "Mask name and email")
}
