package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/cliarg"
)

var setBoostTimeout uint32

var setBoostCmd = &cobra.Command{
	Use:   "set-boost {on|off}",
	Short: "Turn temporary maximum-speed boost on or off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		if err := cliarg.OneOf("state", args[0], "on", "off"); err != nil {
			return err
		}
		on := args[0] == "on"

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := b.SetBoost(cmd.Context(), on, setBoostTimeout); err != nil {
			return fmt.Errorf("set boost: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	setBoostCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
	setBoostCmd.Flags().Uint32Var(&setBoostTimeout, "timeout", 1800, "boost duration in seconds")
}
