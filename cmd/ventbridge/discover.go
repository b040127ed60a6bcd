package main

import (
	"fmt"
	"time"

	"github.com/airnode/ventbridge/pkg/discovery"
	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/output"
)

var discoverBroadcast string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Broadcast for bridges on the local network",
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := discovery.Discover(cmd.Context(), discoverBroadcast, 0, time.Duration(timeoutMS)*time.Millisecond)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("no bridges found")
			return nil
		}
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{r.Addr, r.UUID.String(), r.Version})
		}
		output.PrintTable(cmd.OutOrStdout(), []string{"Address", "UUID", "Version"}, rows)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverBroadcast, "broadcast", discovery.DefaultBroadcastAddr, "broadcast address to probe")
}
