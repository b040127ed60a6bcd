package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/cliarg"
	"github.com/airnode/ventbridge/pkg/bridge"
)

var setModeCmd = &cobra.Command{
	Use:   "set-mode {auto|manual}",
	Short: "Switch the unit between automatic schedule and manual control",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		if err := cliarg.OneOf("mode", args[0], "auto", "manual"); err != nil {
			return err
		}
		mode := bridge.ModeAuto
		if args[0] == "manual" {
			mode = bridge.ModeManual
		}

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := b.SetMode(cmd.Context(), mode); err != nil {
			return fmt.Errorf("set mode: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	setModeCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
}
