package main

import (
	"fmt"

	"github.com/aretw0/lantern/pkg/zodiac"
	"github.com/spf13/cobra"
)

var zodiacCmd = &cobra.Command{
	Use:   "zodiac <YYYY-MM-DD>",
	Short: "Print the zodiac animal and element of a birthdate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		res, err := zodiac.New(zodiac.WithLogger(logger)).Calculate(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (lunar year %d)\n", res.Element, res.Animal, res.CycleYear)
		if res.Approximate {
			first, last := zodiac.Range()
			fmt.Fprintf(out, "approximate: the lunar new year table covers %d-%d\n", first, last)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(zodiacCmd)
}
