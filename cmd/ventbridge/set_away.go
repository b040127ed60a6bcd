package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/cliarg"
)

var setAwayTimeout uint32

var setAwayCmd = &cobra.Command{
	Use:   "set-away {on|off}",
	Short: "Turn away mode on or off",
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

		if err := b.SetAway(cmd.Context(), on, setAwayTimeout); err != nil {
			return fmt.Errorf("set away: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	setAwayCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
	setAwayCmd.Flags().Uint32Var(&setAwayTimeout, "timeout", 0, "away duration in seconds (0 = until changed again)")
}
