package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/output"
)

var listRegisteredCmd = &cobra.Command{
	Use:   "list-registered",
	Short: "List applications registered with a bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		apps, err := b.ListRegisteredApps(cmd.Context())
		if err != nil {
			return fmt.Errorf("list registered apps: %w", err)
		}
		rows := make([][]string, 0, len(apps))
		for _, a := range apps {
			rows = append(rows, []string{a.UUID.String(), a.Name})
		}
		output.PrintTable(cmd.OutOrStdout(), []string{"UUID", "Name"}, rows)
		return nil
	},
}

func init() {
	listRegisteredCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
}
