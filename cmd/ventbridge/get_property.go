package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/pkg/wire"
)

var getPropertyCmd = &cobra.Command{
	Use:   "get-property <unit> <subunit> <property> <type>",
	Short: "Read one RMI property by raw unit/subunit/property address",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		unit, err := parseByteArg("unit", args[0])
		if err != nil {
			return err
		}
		subunit, err := parseByteArg("subunit", args[1])
		if err != nil {
			return err
		}
		property, err := parseByteArg("property", args[2])
		if err != nil {
			return err
		}
		typeTag, err := wire.ParseTypeTag(args[3])
		if err != nil {
			return err
		}

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		value, err := b.GetProperty(cmd.Context(), unit, subunit, typeTag, property)
		if err != nil {
			return fmt.Errorf("get property: %w", err)
		}
		fmt.Println(value)
		return nil
	},
}

func init() {
	getPropertyCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
}

func parseByteArg(name, s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return uint8(n), nil
}
