package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/cliarg"
	"github.com/airnode/ventbridge/pkg/bridge"
)

var setBypassTimeout uint32

var setBypassCmd = &cobra.Command{
	Use:   "set-bypass {auto|on|off}",
	Short: "Control the heat-recovery bypass valve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		if err := cliarg.OneOf("mode", args[0], "auto", "on", "off"); err != nil {
			return err
		}
		mode := map[string]bridge.BypassMode{
			"auto": bridge.BypassAuto,
			"on":   bridge.BypassOn,
			"off":  bridge.BypassOff,
		}[args[0]]

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := b.SetBypass(cmd.Context(), mode, setBypassTimeout); err != nil {
			return fmt.Errorf("set bypass: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	setBypassCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
	setBypassCmd.Flags().Uint32Var(&setBypassTimeout, "timeout", 0, "seconds before reverting to automatic control (0 = until changed again)")
}
