package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/cliarg"
	"github.com/airnode/ventbridge/pkg/bridge"
)

var setSpeedCmd = &cobra.Command{
	Use:   "set-speed {away|low|medium|high}",
	Short: "Set the fan speed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		if err := cliarg.OneOf("speed", args[0], "away", "low", "medium", "high"); err != nil {
			return err
		}
		speed := map[string]bridge.Speed{
			"away":   bridge.SpeedAway,
			"low":    bridge.SpeedLow,
			"medium": bridge.SpeedMedium,
			"high":   bridge.SpeedHigh,
		}[args[0]]

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := b.SetSpeed(cmd.Context(), speed); err != nil {
			return fmt.Errorf("set speed: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	setSpeedCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
}
