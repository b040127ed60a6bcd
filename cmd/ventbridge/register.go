package main

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	registerName string
	registerPin  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register this application with a bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		pin := registerPin
		if pin == "" {
			prompt := promptui.Prompt{Label: "Bridge PIN", Mask: '*'}
			result, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("read pin: %w", err)
			}
			pin = result
		}

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		if err := b.RegisterApp(cmd.Context(), registerName, pin); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Println("registered")
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
	registerCmd.Flags().StringVar(&registerName, "name", "ventbridge-cli", "device name to register as")
	registerCmd.Flags().StringVar(&registerPin, "pin", "", "bridge pin (prompted interactively if omitted)")
}
