package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/cliarg"
)

var setComfoCoolCmd = &cobra.Command{
	Use:   "set-comfocool {auto|off}",
	Short: "Switch the optional ComfoCool add-on between automatic and off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		if err := cliarg.OneOf("mode", args[0], "auto", "off"); err != nil {
			return err
		}
		auto := args[0] == "auto"

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := b.SetComfoCool(cmd.Context(), auto); err != nil {
			return fmt.Errorf("set comfocool: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	setComfoCoolCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
}
