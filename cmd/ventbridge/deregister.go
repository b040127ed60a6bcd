package main

import (
	"fmt"

	"github.com/airnode/ventbridge"
	"github.com/spf13/cobra"
)

var deregisterTarget string

var deregisterCmd = &cobra.Command{
	Use:   "deregister",
	Short: "Remove a previously registered application from a bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		target, err := ventbridge.ParseUUID(deregisterTarget)
		if err != nil {
			return fmt.Errorf("--uuid: %w", err)
		}

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := b.DeregisterApp(cmd.Context(), target); err != nil {
			return fmt.Errorf("deregister: %w", err)
		}
		fmt.Println("deregistered")
		return nil
	},
}

func init() {
	deregisterCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
	deregisterCmd.Flags().StringVar(&deregisterTarget, "uuid", "", "uuid of the application to deregister")
}
