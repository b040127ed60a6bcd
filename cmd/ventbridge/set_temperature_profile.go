package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/cliarg"
	"github.com/airnode/ventbridge/pkg/bridge"
)

var setTemperatureProfileCmd = &cobra.Command{
	Use:   "set-temperature-profile {warm|normal|cool}",
	Short: "Select the comfort curve used by preheat/ComfoCool logic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		if err := cliarg.OneOf("profile", args[0], "warm", "normal", "cool"); err != nil {
			return err
		}
		profile := map[string]bridge.TemperatureProfile{
			"warm":   bridge.ProfileWarm,
			"normal": bridge.ProfileNormal,
			"cool":   bridge.ProfileCool,
		}[args[0]]

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := b.SetTemperatureProfile(cmd.Context(), profile); err != nil {
			return fmt.Errorf("set temperature profile: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	setTemperatureProfileCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
}
