package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var lanternCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Query the lantern service",
}

var lanternGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch a released lantern by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		if svc.Client == nil {
			return errors.New("no lantern service configured (set remote.base_url)")
		}

		rec, err := svc.Client.GetLantern(context.Background(), args[0])
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lanternCmd)
	lanternCmd.AddCommand(lanternGetCmd)
}
